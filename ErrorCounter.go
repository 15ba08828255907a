package pipecheck

import "fmt"

type DeviationKind int

const (
	// A system call failed where the run could continue.
	DEVIATION_SYSCALL DeviationKind = iota

	// The poll result did not match what the stage expects.
	DEVIATION_SEMANTIC
)

func (s DeviationKind) String() string {
	switch s {
	case DEVIATION_SYSCALL:
		return "syscall"
	case DEVIATION_SEMANTIC:
		return "semantic"
	}
	return fmt.Sprintf("DeviationKind(%d)", int(s))
}

type Deviation struct {
	Stage  int
	Kind   DeviationKind
	Detail string
}

// Tally of every deviation seen during a run.  It only ever grows.
type ErrorCounter struct {
	deviations []Deviation
}

func (s *ErrorCounter) Record(stage int, kind DeviationKind, detail string) {
	s.deviations = append(s.deviations, Deviation{Stage: stage, Kind: kind, Detail: detail})
}

func (s *ErrorCounter) Count() int {
	return len(s.deviations)
}

// Returns a copy of the recorded deviations in the order they were seen.
func (s *ErrorCounter) Deviations() []Deviation {
	return append([]Deviation(nil), s.deviations...)
}

// Number of deviations recorded for a single stage.
func (s *ErrorCounter) StageCount(stage int) (total int) {
	for _, d := range s.deviations {
		if d.Stage == stage {
			total++
		}
	}
	return
}
