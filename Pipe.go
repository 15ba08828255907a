package pipecheck

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Upper bound on a single read from the pipe.
const READ_LIMIT = 996

// What a single read produced.  Exactly one of Data (possibly empty) or Message is meaningful.
type ReadResult struct {
	Data    []byte
	Message string
}

// Returns true if the read failed and the failure was counted.
func (s ReadResult) Recorded() bool {
	return s.Message != ""
}

// Payload wrapped as b'...', or the diagnostic for a failed read.
func (s ReadResult) String() string {
	if s.Recorded() {
		return s.Message
	}
	return "b'" + string(s.Data) + "'"
}

// Thin wrappers around open/read/write that count soft failures against a stage.
type Pipe struct {
	sys    Sys
	errors *ErrorCounter
}

func NewPipe(sys Sys, errors *ErrorCounter) *Pipe {
	return &Pipe{sys: sys, errors: errors}
}

// Opens path.  On failure fd is negative, msg holds the diagnostic and the failure is counted.
func (s *Pipe) OpenPath(stage int, path string, flags int) (fd int, msg string) {
	fd, err := s.sys.Open(path, flags, 0)
	if res := Check(RECORD, fd, err); !res.Ok() {
		s.errors.Record(stage, DEVIATION_SYSCALL, "open: "+res.Message)
		return -1, res.Message
	}
	return
}

// Reads up to READ_LIMIT bytes.  A failure with an errno in accepted reads as zero bytes.
func (s *Pipe) ReadFrom(stage int, fd int, accepted ...unix.Errno) ReadResult {
	buf := make([]byte, READ_LIMIT)
	n, err := s.sys.Read(fd, buf)
	res := Check(RECORD, n, err, accepted...)
	switch {
	case !res.Ok():
		s.errors.Record(stage, DEVIATION_SYSCALL, "read: "+res.Message)
		return ReadResult{Message: res.Message}
	case n < 0:
		n = 0
	}
	return ReadResult{Data: buf[:n]}
}

// Writes payload in a single call.  A failed or short write is counted.
func (s *Pipe) WriteTo(stage int, fd int, payload []byte) (msg string) {
	n, err := s.sys.Write(fd, payload)
	if res := Check(RECORD, n, err); !res.Ok() {
		msg = res.Message
	} else if n != len(payload) {
		msg = fmt.Sprintf("short write: %d of %d bytes", n, len(payload))
	}
	if msg != "" {
		s.errors.Record(stage, DEVIATION_SYSCALL, "write: "+msg)
	}
	return
}

// Closes fd, a failure is counted.
func (s *Pipe) CloseFd(stage int, fd int) (msg string) {
	if res := CheckErr(RECORD, s.sys.Close(fd)); !res.Ok() {
		msg = res.Message
		s.errors.Record(stage, DEVIATION_SYSCALL, "close: "+msg)
	}
	return
}
