package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	pipecheck "github.com/akalinux/pipe-check"
	"github.com/akalinux/pipe-check/internal/logging"
	"github.com/akalinux/pipe-check/internal/metrics"
	config "github.com/akalinux/pipe-check/pkg/Config"
)

// A FAIL verdict is a reported outcome, the process still exits with EXIT_OK.
const (
	EXIT_OK     = 0 // All stages ran, verdict printed
	EXIT_FATAL  = 1 // Unrecoverable system call failure
	EXIT_CONFIG = 2 // Bad flags or configuration file
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return EXIT_CONFIG
	}

	logger, err := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return EXIT_CONFIG
	}

	seq := &pipecheck.Sequencer{
		Path:    cfg.PipePath,
		Timeout: cfg.PollTimeout(),
		Out:     stdout,
		Logger:  logger,
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewRecorder()
	}

	once := func(count int) error {
		report, err := seq.Run()
		if err != nil {
			return err
		}
		logger.Info("Run complete", "run", report.RunId, "count", count, "verdict", report.Verdict())
		if recorder == nil {
			return nil
		}
		recorder.Observe(report)
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("Failed to write metrics", "file", cfg.Metrics.Textfile, "error", err)
		}
		return nil
	}

	if cfg.Schedule.Cron == "" {
		err = once(0)
	} else {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		logger.Info("Starting schedule", "cron", cfg.Schedule.Cron, "runs", cfg.Schedule.Runs)
		err = pipecheck.RunSchedule(ctx, cfg.Schedule.Cron, cfg.Schedule.Runs, once)
		if errors.Is(err, context.Canceled) {
			logger.Info("Schedule interrupted")
			err = nil
		}
	}

	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, pipecheck.ERR_FATAL_SYSCALL) {
			return EXIT_FATAL
		}
		return EXIT_CONFIG
	}
	return EXIT_OK
}

// Loads the optional config file and applies every flag that was set on the command line.
func parseConfig(args []string, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("pipe-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	path := fs.String("path", config.DEFAULT_PIPE_PATH, "FIFO to create and exercise")
	timeout := fs.Int("timeout", config.DEFAULT_POLL_TIMEOUT_MS, "Poll timeout in milliseconds")
	cron := fs.String("cron", "", "Repeat the run on this cron expression")
	runs := fs.Int("runs", 0, "Number of scheduled runs, 0 runs until interrupted")
	metricsFile := fs.String("metrics-file", "", "Write Prometheus metrics to this textfile after every run")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("Unexpected arguments: %v", fs.Args())
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "path":
			cfg.PipePath = *path
		case "timeout":
			cfg.PollTimeoutMs = *timeout
		case "cron":
			cfg.Schedule.Cron = *cron
		case "runs":
			cfg.Schedule.Runs = *runs
		case "metrics-file":
			cfg.Metrics.Textfile = *metricsFile
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		}
	})
	return cfg, cfg.Validate()
}
