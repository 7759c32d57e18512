package domain

import "time"

// ContainerSpec describes a one-shot container run of the renderer.
type ContainerSpec struct {
	Image      string
	Command    []string
	WorkingDir string
	// Mounts maps host paths to container paths.
	Mounts map[string]string
	Env    []string
}

// ContainerResult is the outcome of a finished container.
type ContainerResult struct {
	ID       string
	ExitCode int64
	Output   string
	Duration time.Duration
}

// StoreStatistics holds row counts reported by the management endpoint.
type StoreStatistics struct {
	Maps  int `json:"maps"`
	Grids int `json:"grids"`
	Tiles int `json:"tiles"`
}
