package session

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Ready reports which sources have input waiting.
type Ready struct {
	Console bool
	Channel bool
}

// Waiter blocks until the console or the channel has input, or until the
// timeout passes. A timeout returns the zero Ready and no error.
type Waiter interface {
	Wait(timeout time.Duration) (Ready, error)
}

// fder is implemented by *os.File, rawterm.Terminal and serial ports.
type fder interface {
	Fd() uintptr
}

const readable = unix.POLLIN | unix.POLLHUP | unix.POLLERR

// pollWaiter waits on both descriptors with poll(2).
type pollWaiter struct {
	fds [2]unix.PollFd
}

func newPollWaiter(console, channel uintptr) *pollWaiter {
	return &pollWaiter{fds: [2]unix.PollFd{
		{Fd: int32(console), Events: unix.POLLIN},
		{Fd: int32(channel), Events: unix.POLLIN},
	}}
}

func (w *pollWaiter) Wait(timeout time.Duration) (Ready, error) {
	w.fds[0].Revents = 0
	w.fds[1].Revents = 0

	n, err := unix.Poll(w.fds[:], int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return Ready{}, nil
		}
		return Ready{}, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return Ready{}, nil
	}
	if w.fds[0].Revents&unix.POLLNVAL != 0 || w.fds[1].Revents&unix.POLLNVAL != 0 {
		return Ready{}, fmt.Errorf("poll: %w", unix.EBADF)
	}
	return Ready{
		Console: w.fds[0].Revents&readable != 0,
		Channel: w.fds[1].Revents&readable != 0,
	}, nil
}
