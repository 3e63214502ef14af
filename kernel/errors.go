package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrStartup means the process could not be spawned or exited before
	// printing its first prompt.
	ErrStartup = errors.New("kernel: startup failed")

	// ErrProtocol means a reply block did not have the expected shape.
	ErrProtocol = errors.New("kernel: protocol mismatch")

	// ErrNoOutput means the reply block carried no Out[n]//FullForm= marker,
	// typically because the kernel printed a message instead of a value.
	ErrNoOutput = errors.New("no output marker")

	// ErrUnterminated means the Out marker was found but the blank line
	// closing the payload was not.
	ErrUnterminated = errors.New("output not terminated by a blank line")

	// ErrClosed is returned by Request after Close.
	ErrClosed = errors.New("kernel: session closed")

	// ErrProcessExited means the process went away while a request was in
	// flight.
	ErrProcessExited = errors.New("kernel: process exited")
)

// ProtocolError carries the raw reply block that failed extraction. It
// matches ErrProtocol and its Err (ErrNoOutput or ErrUnterminated).
type ProtocolError struct {
	Block string
	Err   error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("kernel: protocol mismatch: %v in reply %q", e.Err, clip(e.Block, 200))
}

func (e *ProtocolError) Unwrap() []error { return []error{ErrProtocol, e.Err} }

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
