package pipecheck

import (
	"fmt"
	"strings"
)

// Formatted value of a poll result with no flags set.
const EMPTY_EVENTS = "<empty>"

// One descriptor's poll result, captured once per stage.
type PollObservation struct {
	Fd        int32
	Requested int16
	Returned  int16
}

// Returns true if every bit in flags was returned.
func (s PollObservation) Has(flags int16) bool {
	return s.Returned&flags == flags
}

// Renders the returned events as "<fd>: POLLIN(0x1)|POLLHUP(0x10)", in POLL_FLAGS order.
// Observations with no events are skipped, the rest are joined by ", ".
// When nothing at all was returned the result is EMPTY_EVENTS.
func FormatEvents(list ...PollObservation) string {
	segments := make([]string, 0, len(list))
	for _, obs := range list {
		var b strings.Builder
		for _, flag := range POLL_FLAGS {
			if obs.Returned&flag.Bit == 0 {
				continue
			}
			if b.Len() == 0 {
				fmt.Fprintf(&b, "%d: ", obs.Fd)
			} else {
				b.WriteByte('|')
			}
			fmt.Fprintf(&b, "%s(0x%x)", flag.Name, flag.Bit)
		}
		if b.Len() != 0 {
			segments = append(segments, b.String())
		}
	}

	if len(segments) == 0 {
		return EMPTY_EVENTS
	}
	return strings.Join(segments, ", ")
}
