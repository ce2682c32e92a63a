package repl

import (
	"errors"

	"github.com/ardnew/enclose/closure"
)

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")

	ErrUnknownCommand = closure.NewError("unknown command (try :help)")
	ErrUsage          = closure.NewError("invalid input")
	ErrUndefined      = closure.NewError("undefined closure")
)
