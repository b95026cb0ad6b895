package core

import (
	"errors"
)

var (
	ErrReleased       = errors.New("object already released")
	ErrUnknownID      = errors.New("identifier not in use")
	ErrPoolNotStarted = errors.New("identifier pool used before any id was acquired")
	ErrUnknown        = errors.New("unknown")
)
