package scheduler

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Supervisor controls the long-running scheduler process: it can start the
// loop as a detached child, record its pid, and later signal it to stop.
type Supervisor struct {
	pidFile string
	logger  *slog.Logger
}

// NewSupervisor creates a supervisor using pidFile to track the daemon.
func NewSupervisor(pidFile string, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		pidFile: pidFile,
		logger:  logger.With("component", "supervisor"),
	}
}

// Start spawns the current binary's scheduler loop in its own session and
// records the child pid.
func (s *Supervisor) Start(args ...string) error {
	if pid, err := s.readPid(); err == nil && processAlive(pid) {
		return fmt.Errorf("scheduler already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start scheduler process: %w", err)
	}

	if err := s.writePid(cmd.Process.Pid); err != nil {
		cmd.Process.Kill()
		return err
	}
	// The child is detached; release it so it outlives this process.
	cmd.Process.Release()

	s.logger.Info("scheduler daemon started", "pid", cmd.Process.Pid)
	return nil
}

// Stop signals the recorded process to terminate and removes the pid file.
// A missing pid file means no daemon is running; that is a warning, not an
// error.
func (s *Supervisor) Stop() error {
	pid, err := s.readPid()
	if os.IsNotExist(err) {
		s.logger.Warn("no scheduler process found")
		return nil
	}
	if err != nil {
		return err
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	if err := os.Remove(s.pidFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.logger.Info("scheduler daemon stopped", "pid", pid)
	return nil
}

func (s *Supervisor) readPid() (int, error) {
	data, err := os.ReadFile(s.pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", s.pidFile, err)
	}
	return pid, nil
}

func (s *Supervisor) writePid(pid int) error {
	if err := os.MkdirAll(filepath.Dir(s.pidFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.pidFile, []byte(strconv.Itoa(pid)), 0o644)
}

// processAlive reports whether pid refers to a live process.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
