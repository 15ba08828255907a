package pipecheck

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type WriterAction int

const (
	WRITER_NONE WriterAction = iota
	WRITER_OPEN
	WRITER_CLOSE
)

// The poll result a stage requires of the read end.
type Expectation int

const (
	// No events at all, the poll should time out.
	EXPECT_NO_EVENTS Expectation = iota

	// POLLIN is set, other bits are ignored.
	EXPECT_READABLE

	// POLLHUP and nothing else.
	EXPECT_HANGUP
)

func (s Expectation) Met(revents int16) bool {
	switch s {
	case EXPECT_NO_EVENTS:
		return revents == 0
	case EXPECT_READABLE:
		return revents&CAN_READ != 0
	case EXPECT_HANGUP:
		return revents == IN_HANGUP
	}
	return false
}

func (s Expectation) String() string {
	switch s {
	case EXPECT_NO_EVENTS:
		return EMPTY_EVENTS
	case EXPECT_READABLE:
		return "POLLIN"
	case EXPECT_HANGUP:
		return "POLLHUP only"
	}
	return fmt.Sprintf("Expectation(%d)", int(s))
}

type Stage struct {
	Id     int
	Writer WriterAction

	// Written right after the writer is opened.
	Payload string
	Expect  Expectation

	// Read failures that are anticipated at this stage.
	ReadAccepted []unix.Errno
}

// Two writer sessions against one long lived reader.
var STAGES = [...]Stage{
	{Id: 0, Writer: WRITER_NONE, Expect: EXPECT_NO_EVENTS, ReadAccepted: []unix.Errno{unix.EAGAIN}},
	{Id: 1, Writer: WRITER_OPEN, Payload: "test 1", Expect: EXPECT_READABLE},
	{Id: 2, Writer: WRITER_CLOSE, Expect: EXPECT_HANGUP},
	{Id: 3, Writer: WRITER_OPEN, Payload: "test 2", Expect: EXPECT_READABLE},
	{Id: 4, Writer: WRITER_CLOSE, Expect: EXPECT_HANGUP},
}
