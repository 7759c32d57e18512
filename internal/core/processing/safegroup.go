package processing

import (
	"fmt"
	"runtime/debug"

	"github.com/melih/mapserver/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// SafeGroup wraps errgroup.Group with panic recovery so a panicking
// pipeline cannot take the service down.
type SafeGroup struct {
	group  errgroup.Group
	logger logger.Logger
}

// NewSafeGroup creates a SafeGroup. Unlike errgroup.WithContext, a failing
// task does not cancel its siblings.
func NewSafeGroup(log logger.Logger) *SafeGroup {
	return &SafeGroup{logger: log}
}

// Go runs fn in a new goroutine. A panic is logged with its stack and returned as an error.
func (sg *SafeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Goroutine panic recovered",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("goroutine panic: %v", r)
			}
		}()

		return fn()
	})
}

// Wait blocks until all goroutines have returned and reports the first error.
func (sg *SafeGroup) Wait() error {
	return sg.group.Wait()
}
