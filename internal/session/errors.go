package session

import "errors"

var (
	ErrNoWaiter      = errors.New("no readiness waiter: console and channel must expose Fd or WithWaiter must be given")
	ErrInvalidOption = errors.New("invalid session option")
	ErrAlreadyRun    = errors.New("session has already run")
)
