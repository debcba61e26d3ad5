package domain

import "errors"

var (
	// ErrUnreachableOutcome means an aggregate landed on a presentation
	// cell that no valid batch can produce.
	ErrUnreachableOutcome = errors.New("unreachable batch outcome")

	ErrNoPatches = errors.New("no patches given")
	ErrNoTarget  = errors.New("no target selected")

	// ErrShortRead is returned when a File yields fewer bytes than requested.
	ErrShortRead = errors.New("short read")
)
