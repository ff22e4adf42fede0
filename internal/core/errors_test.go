package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestSpawnErrorWrapsCause(t *testing.T) {
	cause := os.ErrPermission
	err := &SpawnError{Command: "/usr/bin/python3", Err: cause}

	if !errors.Is(err, os.ErrPermission) {
		t.Error("SpawnError should unwrap to the OS error")
	}
	if !strings.Contains(err.Error(), "/usr/bin/python3") {
		t.Errorf("SpawnError message should name the command: %s", err.Error())
	}
}

func TestProcessErrorMessage(t *testing.T) {
	err := &ProcessError{
		Command:  "python3",
		Args:     []string{"-m", "venv", "/tmp/venv"},
		ExitCode: 2,
		Stderr:   "No module named venv\n",
	}

	msg := err.Error()
	if !strings.Contains(msg, "exited with code 2") {
		t.Errorf("missing exit code: %s", msg)
	}
	if !strings.Contains(msg, "-m venv") {
		t.Errorf("missing args: %s", msg)
	}
	if !strings.Contains(msg, "No module named venv") {
		t.Errorf("missing stderr: %s", msg)
	}
}

func TestProcessErrorSignalMessage(t *testing.T) {
	err := &ProcessError{Command: "python3", Signal: "killed"}
	if !strings.Contains(err.Error(), "signal killed") {
		t.Errorf("signal terminations should be reported as such: %s", err.Error())
	}
}

func TestDownloadErrorStatusVsTransport(t *testing.T) {
	status := &DownloadError{URL: "https://example.com/a.zip", StatusCode: 404}
	if !strings.Contains(status.Error(), "404") {
		t.Errorf("status error should include the code: %s", status.Error())
	}

	cause := fmt.Errorf("connection reset")
	transport := &DownloadError{URL: "https://example.com/a.zip", Err: cause}
	if !errors.Is(transport, cause) {
		t.Error("transport error should unwrap to the cause")
	}
}

func TestDetectionErrorAs(t *testing.T) {
	inner := &ProcessError{Command: "python3", ExitCode: 1}
	wrapped := fmt.Errorf("probe: %w", &DetectionError{Interpreter: "/usr/bin/python3", Err: inner})

	var det *DetectionError
	if !errors.As(wrapped, &det) {
		t.Fatal("errors.As should find DetectionError through wrapping")
	}
	var proc *ProcessError
	if !errors.As(det, &proc) {
		t.Fatal("DetectionError should unwrap to the probe failure")
	}
}

func TestPathTranslationErrorNamesInput(t *testing.T) {
	err := &PathTranslationError{Path: `\\server\share`}
	if !strings.Contains(err.Error(), `\\server\share`) {
		t.Errorf("translation error should name the offending path: %s", err.Error())
	}
}
