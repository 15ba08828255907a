package pipecheck

import (
	"time"

	"golang.org/x/sys/unix"
)

// The system calls the harness drives.  UnixSys talks to the kernel, tests swap in stubs.
//
// Every method mirrors the x/sys/unix call of the same name: n is -1 whenever err is not nil.
type Sys interface {
	Open(path string, flags int, mode uint32) (fd int, err error)
	Read(fd int, p []byte) (n int, err error)
	Write(fd int, p []byte) (n int, err error)
	Close(fd int) error
	Poll(fds []unix.PollFd, timeout int) (n int, err error)
	Mkfifo(path string, mode uint32) error
	Mkdir(path string, mode uint32) error
	Unlink(path string) error
}

type UnixSys struct{}

func (UnixSys) Open(path string, flags int, mode uint32) (int, error) {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, mode)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

func (UnixSys) Read(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func (UnixSys) Write(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func (UnixSys) Close(fd int) error {
	return unix.Close(fd)
}

func (UnixSys) Poll(fds []unix.PollFd, timeout int) (int, error) {
	n, err := unix.Poll(fds, timeout)
	if err != nil {
		return -1, err
	}
	return n, nil
}

func (UnixSys) Mkfifo(path string, mode uint32) error {
	return unix.Mkfifo(path, mode)
}

func (UnixSys) Mkdir(path string, mode uint32) error {
	return unix.Mkdir(path, mode)
}

func (UnixSys) Unlink(path string) error {
	return unix.Unlink(path)
}

// Polls fds, retrying on EINTR with whatever is left of the timeout.
//
// Go delivers preemption signals to running threads, so a bare poll(2) can come back early.
func pollRetry(sys Sys, fds []unix.PollFd, timeout time.Duration) (n int, err error) {
	deadline := time.Now().Add(timeout)
	for {
		n, err = sys.Poll(fds, int(timeout.Milliseconds()))
		if err != unix.EINTR {
			return
		}
		timeout = max(time.Until(deadline), 0)
	}
}
