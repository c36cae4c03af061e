package reload

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"syscall"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/sweetmoney-versioning/internal/logger"
)

// ProcessLister returns the processes running on this machine.
type ProcessLister func() ([]ps.Process, error)

// Sender delivers a signal to the process with the given ID.
type Sender func(pid int, sig os.Signal) error

// Signaller sends a signal to every process whose executable is in a fixed set.
type Signaller struct {
	// names is the set of executable names to signal.
	names map[string]struct{}
	// signal is delivered to each matching process.
	signal os.Signal
	// list enumerates running processes.
	list ProcessLister
	// send delivers the signal.
	send Sender
	// self is skipped so the caller never signals itself.
	self int
}

// Option configures a Signaller.
type Option func(*Signaller)

// WithProcessLister replaces the process enumeration, mainly for tests.
func WithProcessLister(list ProcessLister) Option {
	return func(s *Signaller) {
		if list != nil {
			s.list = list
		}
	}
}

// WithSender replaces signal delivery, mainly for tests.
func WithSender(send Sender) Option {
	return func(s *Signaller) {
		if send != nil {
			s.send = send
		}
	}
}

// New creates a Signaller for the given executable names.
// Names are matched with and without the Windows ".exe" suffix.
func New(names []string, sig os.Signal, opts ...Option) *Signaller {
	s := &Signaller{
		names:  make(map[string]struct{}, len(names)),
		signal: sig,
		list:   ps.Processes,
		send:   sendSignal,
		self:   os.Getpid(),
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		s.names[normalise(name)] = struct{}{}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewHangup creates a Signaller that sends SIGHUP, the reload signal of the application servers.
func NewHangup(names []string, opts ...Option) *Signaller {
	return New(names, syscall.SIGHUP, opts...)
}

// Empty reports whether there is nothing to signal.
func (s *Signaller) Empty() bool {
	return s == nil || len(s.names) == 0
}

// Signal delivers the signal to every matching process and returns how many were signalled.
func (s *Signaller) Signal(ctx context.Context) (int, error) {
	if s.Empty() {
		return 0, nil
	}

	processList, err := s.list()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	signalled := 0

	for _, process := range processList {
		if err = ctx.Err(); err != nil {
			return signalled, err
		}

		processID := process.Pid()
		if processID == s.self {
			continue
		}

		if _, found := s.names[normalise(process.Executable())]; !found {
			continue
		}

		if err = s.send(processID, s.signal); err != nil {
			return signalled, fmt.Errorf("signal %s (pid %d): %w", process.Executable(), processID, err)
		}

		logger.InfoKV(ctx, "Signalled process",
			"executable", process.Executable(), "pid", processID, "signal", s.signal.String())

		signalled++
	}

	return signalled, nil
}

// SignalPID delivers the signal to the process with the given ID, but only while that
// process still runs one of the configured executables. It reports whether a signal was sent.
func (s *Signaller) SignalPID(ctx context.Context, pid int) (bool, error) {
	if s.Empty() || pid <= 0 || pid == s.self {
		return false, nil
	}

	processList, err := s.list()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() != pid {
			continue
		}

		if _, found := s.names[normalise(process.Executable())]; !found {
			logger.DebugKV(ctx, "Process ID reused by another executable",
				"executable", process.Executable(), "pid", pid)

			return false, nil
		}

		if err = s.send(pid, s.signal); err != nil {
			return false, fmt.Errorf("signal %s (pid %d): %w", process.Executable(), pid, err)
		}

		logger.InfoKV(ctx, "Signalled process",
			"executable", process.Executable(), "pid", pid, "signal", s.signal.String())

		return true, nil
	}

	return false, nil
}

// sendSignal finds the process and delivers the signal; os.Kill is sent through Process.Kill.
func sendSignal(pid int, sig os.Signal) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	if sig == os.Kill {
		return process.Kill()
	}

	return process.Signal(sig)
}

// normalise strips the Windows executable suffix so configured names work on every platform.
func normalise(name string) string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return strings.TrimSuffix(strings.ToLower(name), ".exe")
	}

	return name
}
