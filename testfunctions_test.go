package pipecheck

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

const TEST_TIMEOUT = 50 * time.Millisecond

// Wraps UnixSys so individual calls can be failed or altered.
type stubSys struct {
	UnixSys

	polls  int
	reads  int
	closed []int

	// Called with the 1 based poll count, before the kernel is asked.
	// Returning handled=true skips the real poll.
	beforePoll func(call int, fds []unix.PollFd) (n int, handled bool, err error)

	// Called with the 1 based poll count after a successful real poll.
	afterPoll func(call int, fds []unix.PollFd)

	// Called with the 1 based read count, a non nil error replaces the real read.
	readErr func(call int) error

	openErr   func(path string, flags int) error
	writeN    func(p []byte) int
	mkfifoErr error
	mkdirs    []string
}

func (s *stubSys) Poll(fds []unix.PollFd, timeout int) (int, error) {
	s.polls++
	if s.beforePoll != nil {
		if n, handled, err := s.beforePoll(s.polls, fds); handled {
			return n, err
		}
	}
	n, err := s.UnixSys.Poll(fds, timeout)
	if err == nil && s.afterPoll != nil {
		s.afterPoll(s.polls, fds)
	}
	return n, err
}

func (s *stubSys) Read(fd int, p []byte) (int, error) {
	s.reads++
	if s.readErr != nil {
		if err := s.readErr(s.reads); err != nil {
			return -1, err
		}
	}
	return s.UnixSys.Read(fd, p)
}

func (s *stubSys) Open(path string, flags int, mode uint32) (int, error) {
	if s.openErr != nil {
		if err := s.openErr(path, flags); err != nil {
			return -1, err
		}
	}
	return s.UnixSys.Open(path, flags, mode)
}

func (s *stubSys) Write(fd int, p []byte) (int, error) {
	if s.writeN != nil {
		return s.writeN(p), nil
	}
	return s.UnixSys.Write(fd, p)
}

func (s *stubSys) Close(fd int) error {
	s.closed = append(s.closed, fd)
	return s.UnixSys.Close(fd)
}

func (s *stubSys) Mkfifo(path string, mode uint32) error {
	if s.mkfifoErr != nil {
		return s.mkfifoErr
	}
	return s.UnixSys.Mkfifo(path, mode)
}

func (s *stubSys) Mkdir(path string, mode uint32) error {
	s.mkdirs = append(s.mkdirs, path)
	return s.UnixSys.Mkdir(path, mode)
}

// FIFO path inside a directory that does not exist yet.
func testFifoPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "pipe", "fifo")
}

func newTestSequencer(t *testing.T, sys Sys) (*Sequencer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Sequencer{
		Sys:     sys,
		Path:    testFifoPath(t),
		Timeout: TEST_TIMEOUT,
		Out:     out,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, out
}

// Non blocking raw pipe.  Both ends are closed with the test, closeW closes the write end early.
func rawPipe(t *testing.T) (r, w int, closeW func()) {
	p := make([]int, 2)
	if e := unix.Pipe2(p, unix.O_NONBLOCK|unix.O_CLOEXEC); e != nil {
		// if this breaks.. ya no point in testing anyting else!
		panic(e)
	}
	wOpen := true
	closeW = func() {
		if wOpen {
			unix.Close(p[1])
			wOpen = false
		}
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		closeW()
	})
	return p[0], p[1], closeW
}
