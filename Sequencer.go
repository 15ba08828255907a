package pipecheck

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	DEFAULT_PIPE_PATH    = "/tmp/cyg_pipe_test"
	DEFAULT_POLL_TIMEOUT = time.Millisecond * 1000
)

const PASS = "PASS"

type StageReport struct {
	Stage int

	// Text printed for "open(w)", empty when the stage did not open a writer.
	Writer   string
	WriterFd int

	Poll     PollObservation
	PollText string
	Read     ReadResult
}

// Everything observed by a single Sequencer.Run.
type Report struct {
	RunId      string
	Path       string
	ReadFd     int
	Stages     []StageReport
	Deviations []Deviation
	Errors     int
	Finished   time.Time
}

func (s *Report) Passed() bool {
	return s.Errors == 0
}

func (s *Report) Verdict() string {
	if s.Passed() {
		return PASS
	}
	return fmt.Sprintf("FAIL: got %d errors", s.Errors)
}

// Drives a FIFO through STAGES and compares every poll result with the stage expectation.
//
// Zero values are replaced by UnixSys, DEFAULT_PIPE_PATH, DEFAULT_POLL_TIMEOUT, os.Stdout and slog.Default().
type Sequencer struct {
	Sys     Sys
	Path    string
	Timeout time.Duration
	Out     io.Writer
	Logger  *slog.Logger

	// Defaults to STAGES.
	Stages []Stage
}

func (s *Sequencer) defaults() {
	if s.Sys == nil {
		s.Sys = UnixSys{}
	}
	if s.Path == "" {
		s.Path = DEFAULT_PIPE_PATH
	}
	if s.Timeout <= 0 {
		s.Timeout = DEFAULT_POLL_TIMEOUT
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Stages == nil {
		s.Stages = STAGES[:]
	}
}

// Provisions the FIFO and runs every stage, printing the trace and the verdict to Out.
//
// A FIFO that cannot be provisioned is the only unrecoverable failure: err then carries
// ERR_FATAL_SYSCALL, no stage runs and no verdict is printed.  Deviations never produce an error.
func (s *Sequencer) Run() (report *Report, err error) {
	s.defaults()
	report = &Report{RunId: uuid.NewString(), Path: s.Path, ReadFd: -1}
	log := s.Logger.With("run", report.RunId, "path", s.Path)

	if err = MakePipe(s.Sys, s.Path); err != nil {
		return
	}
	log.Debug("FIFO provisioned")

	errs := &ErrorCounter{}
	pipe := NewPipe(s.Sys, errs)

	readFd, msg := pipe.OpenPath(0, s.Path, unix.O_RDONLY|unix.O_NONBLOCK)
	report.ReadFd = readFd
	if readFd >= 0 {
		defer s.Sys.Close(readFd)
		s.printf("0. open(r) = %s -> %d\n", s.Path, readFd)
	} else {
		s.printf("0. open(r) = %s -> %s\n", s.Path, msg)
	}

	writeFd := -1
	for _, stage := range s.Stages {
		sr := StageReport{Stage: stage.Id, WriterFd: -1}

		switch stage.Writer {
		case WRITER_OPEN:
			if writeFd >= 0 {
				pipe.CloseFd(stage.Id, writeFd)
			}
			sr.WriterFd, sr.Writer = s.openWriter(pipe, stage)
			writeFd = sr.WriterFd
			s.printf("%d. open(w) = %s -> %s\n", stage.Id, s.Path, sr.Writer)
		case WRITER_CLOSE:
			if writeFd >= 0 {
				pipe.CloseFd(stage.Id, writeFd)
				writeFd = -1
			}
		}

		sr.Poll, sr.PollText = s.poll(errs, stage, readFd)
		s.printf("%d. poll    = %s\n", stage.Id, sr.PollText)

		sr.Read = pipe.ReadFrom(stage.Id, readFd, stage.ReadAccepted...)
		s.printf("%d. read    = %s\n", stage.Id, sr.Read)

		log.Debug("Stage complete",
			"stage", stage.Id,
			"revents", sr.Poll.Returned,
			"errors", errs.StageCount(stage.Id),
		)
		report.Stages = append(report.Stages, sr)
	}

	if writeFd >= 0 {
		s.Sys.Close(writeFd)
	}

	report.Deviations = errs.Deviations()
	report.Errors = errs.Count()
	report.Finished = time.Now()
	for _, d := range report.Deviations {
		log.Warn("Deviation", "stage", d.Stage, "kind", d.Kind, "detail", d.Detail)
	}
	s.printf("%s\n", report.Verdict())
	return
}

// Opens a writer and sends the stage payload.  Returns the fd and the text for the trace.
func (s *Sequencer) openWriter(pipe *Pipe, stage Stage) (fd int, text string) {
	fd, msg := pipe.OpenPath(stage.Id, s.Path, unix.O_WRONLY|unix.O_NONBLOCK)
	if fd < 0 {
		return fd, msg
	}
	if stage.Payload != "" {
		pipe.WriteTo(stage.Id, fd, []byte(stage.Payload))
	}
	return fd, fmt.Sprintf("%d", fd)
}

func (s *Sequencer) poll(errs *ErrorCounter, stage Stage, readFd int) (obs PollObservation, text string) {
	fds := []unix.PollFd{{Fd: int32(readFd), Events: POLL_MASK}}
	n, err := pollRetry(s.Sys, fds, s.Timeout)
	obs = PollObservation{Fd: fds[0].Fd, Requested: POLL_MASK, Returned: fds[0].Revents}

	if res := Check(RECORD, n, err); !res.Ok() {
		errs.Record(stage.Id, DEVIATION_SYSCALL, "poll: "+res.Message)
		return obs, res.Message
	}

	text = FormatEvents(obs)
	if !stage.Expect.Met(obs.Returned) {
		errs.Record(stage.Id, DEVIATION_SEMANTIC, fmt.Sprintf("poll: expected %s, got %s", stage.Expect, text))
	}
	return
}

func (s *Sequencer) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}
