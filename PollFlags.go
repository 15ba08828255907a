package pipecheck

import "golang.org/x/sys/unix"

// https://man7.org/linux/man-pages/man2/poll.2.html
const (
	// Data is ready to be read
	CAN_READ = int16(unix.POLLIN)

	// Urgent data is ready
	CAN_READ_PRI = int16(unix.POLLPRI)

	// Other end has disconnected
	IN_HANGUP = int16(unix.POLLHUP)

	// Errors
	IN_ERROR = int16(unix.POLLERR)

	// Not a valid handle
	IN_INVALID = int16(unix.POLLNVAL)
)

type PollFlag struct {
	Bit  int16
	Name string
}

// Decode order for poll results.  Changing the order changes every formatted event string.
var POLL_FLAGS = [...]PollFlag{
	{CAN_READ, "POLLIN"},
	{CAN_READ_PRI, "POLLPRI"},
	{IN_HANGUP, "POLLHUP"},
	{IN_ERROR, "POLLERR"},
	{IN_INVALID, "POLLNVAL"},
}

// The events requested on every poll call.
var POLL_MASK = pollMask()

func pollMask() (mask int16) {
	for _, flag := range POLL_FLAGS {
		mask |= flag.Bit
	}
	return
}
