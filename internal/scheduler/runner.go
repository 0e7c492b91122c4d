package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// JobRunner executes a scheduled command.
type JobRunner interface {
	Run(ctx context.Context, script string) error
}

// ScriptRunner runs a job command as a synchronous subprocess, appending
// its combined output to a per-script execution log.
type ScriptRunner struct {
	logDir string
	logger *slog.Logger
}

// NewScriptRunner creates a runner that writes execution logs under logDir.
func NewScriptRunner(logDir string, logger *slog.Logger) *ScriptRunner {
	return &ScriptRunner{
		logDir: logDir,
		logger: logger.With("component", "script_runner"),
	}
}

// Run executes the script command line and records its output. The command
// line is split on whitespace; the first field is the executable.
func (r *ScriptRunner) Run(ctx context.Context, script string) error {
	fields := strings.Fields(script)
	if len(fields) == 0 {
		return fmt.Errorf("empty script command")
	}

	started := time.Now()
	r.logger.Info("executing job", "script", script)

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()

	if err := r.appendExecLog(fields[0], started, output.Bytes(), runErr); err != nil {
		r.logger.Error("writing execution log failed", "script", script, "error", err)
	}

	if runErr != nil {
		r.logger.Error("job failed", "script", script, "error", runErr)
		return runErr
	}
	r.logger.Info("job complete", "script", script, "duration", time.Since(started))
	return nil
}

func (r *ScriptRunner) appendExecLog(executable string, started time.Time, output []byte, runErr error) error {
	if err := os.MkdirAll(r.logDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.logDir, filepath.Base(executable)+"_exec.log")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "\n--- started: %s ---\n", started.Format("2006-01-02 15:04:05"))
	f.Write(output)
	if runErr != nil {
		fmt.Fprintf(f, "\nerror: %v\n", runErr)
	}
	fmt.Fprintf(f, "--- finished: %s ---\n", time.Now().Format("2006-01-02 15:04:05"))
	return nil
}
