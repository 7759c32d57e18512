package git

import (
	"bytes"
	"strings"

	"github.com/melih/mapserver/internal/platform/logger"
)

// progressWriter forwards remote progress messages to the debug log.
// Git separates progress updates with carriage returns as well as newlines.
type progressWriter struct {
	log     logger.Logger
	partial []byte
}

func newProgressWriter(log logger.Logger) *progressWriter {
	return &progressWriter{log: log}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexAny(w.partial, "\r\n")
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(w.partial[:i])); line != "" {
			w.log.Debug("Progress: " + line)
		}
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}
