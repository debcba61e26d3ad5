package domain

import "time"

// Association remembers where the target with a given checksum lives.
type Association struct {
	Checksum string    `json:"checksum"`
	Size     uint64    `json:"size"`
	Path     string    `json:"path"`
	Updated  time.Time `json:"updated"`
}
