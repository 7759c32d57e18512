package domain

import "os"

// WorkDirectory is a pooled directory holding one checkout of the source repository.
// It is owned by at most one pipeline between Acquire and Release.
type WorkDirectory struct {
	Path    string
	LastRef string
}

// Exists reports whether the backing folder is still present on disk.
func (d *WorkDirectory) Exists() bool {
	info, err := os.Stat(d.Path)
	return err == nil && info.IsDir()
}

// PoolState is a snapshot of the work directory pool counters.
type PoolState struct {
	Capacity  int `json:"capacity"`
	Live      int `json:"live"`
	Available int `json:"available"`
	Waiters   int `json:"waiters"`
}
