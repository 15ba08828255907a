package pipecheck

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sys/unix"
)

var ERR_FATAL_SYSCALL = errors.New("Unrecoverable system call failure")

// Selects what Check does with an unexpected failure.
type CheckMode int

const (
	// Record the failure and let the caller keep going.
	RECORD CheckMode = iota

	// The caller has no way to recover.
	ABORT
)

type CheckKind int

const (
	CHECK_OK CheckKind = iota
	CHECK_RECORDED
	CHECK_FATAL
)

func (s CheckKind) String() string {
	switch s {
	case CHECK_OK:
		return "ok"
	case CHECK_RECORDED:
		return "recorded"
	case CHECK_FATAL:
		return "fatal"
	}
	return fmt.Sprintf("CheckKind(%d)", int(s))
}

// Classification of a single system call.  Message is only set when Kind is not CHECK_OK.
type Result struct {
	Kind    CheckKind
	Errno   unix.Errno
	Message string
}

func (s Result) Ok() bool {
	return s.Kind == CHECK_OK
}

func (s Result) Recorded() bool {
	return s.Kind == CHECK_RECORDED
}

func (s Result) Fatal() bool {
	return s.Kind == CHECK_FATAL
}

// Returns nil for CHECK_OK, otherwise a *SyscallError.
func (s Result) Err() error {
	if s.Kind == CHECK_OK {
		return nil
	}
	return &SyscallError{Errno: s.Errno, Message: s.Message, fatal: s.Kind == CHECK_FATAL}
}

type SyscallError struct {
	Errno   unix.Errno
	Message string
	fatal   bool
}

func (e *SyscallError) Error() string {
	return e.Message
}

func (e *SyscallError) Unwrap() []error {
	if e.fatal {
		return []error{e.Errno, ERR_FATAL_SYSCALL}
	}
	return []error{e.Errno}
}

// Classifies the outcome of a system call.
//
// A non negative ret, or an errno found in accepted, is CHECK_OK.  Anything else produces
// the message "errno <NAME>(<n>): <description>" and is CHECK_RECORDED in RECORD mode or
// CHECK_FATAL in ABORT mode.
func Check(mode CheckMode, ret int, err error, accepted ...unix.Errno) Result {
	if ret >= 0 {
		return Result{}
	}

	var errno unix.Errno
	if !errors.As(err, &errno) && err != nil {
		return Result{Kind: checkKind(mode), Message: err.Error()}
	}
	if slices.Contains(accepted, errno) {
		return Result{Errno: errno}
	}

	return Result{
		Kind:    checkKind(mode),
		Errno:   errno,
		Message: ErrnoMessage(errno),
	}
}

// Check for calls that only report an error.
func CheckErr(mode CheckMode, err error, accepted ...unix.Errno) Result {
	return Check(mode, retOf(err), err, accepted...)
}

func retOf(err error) int {
	if err != nil {
		return -1
	}
	return 0
}

func checkKind(mode CheckMode) CheckKind {
	if mode == ABORT {
		return CHECK_FATAL
	}
	return CHECK_RECORDED
}

func ErrnoMessage(errno unix.Errno) string {
	return fmt.Sprintf("errno %s(%d): %s", ErrnoName(errno), int(errno), errno.Error())
}
