package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackendWritesByLevel(t *testing.T) {
	backend := NewBackend()
	allLogs := &bytes.Buffer{}
	errorLogs := &bytes.Buffer{}
	err := backend.AddLogWriter(allLogs, LevelTrace)
	if err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	err = backend.AddLogWriter(errorLogs, LevelError)
	if err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %+v", err)
	}

	log := backend.Logger("TEST")
	log.Debugf("filtered by the logger level")
	log.Infof("coin %d selected", 1)
	log.Errorf("submission failed")
	backend.Close()

	if strings.Contains(allLogs.String(), "filtered") {
		t.Fatalf("a debug message was written at the info level:\n%s", allLogs)
	}
	if !strings.Contains(allLogs.String(), "[INF] TEST: coin 1 selected") {
		t.Fatalf("missing info message:\n%s", allLogs)
	}
	if strings.Contains(errorLogs.String(), "selected") || !strings.Contains(errorLogs.String(), "[ERR] TEST: submission failed") {
		t.Fatalf("unexpected error log:\n%s", errorLogs)
	}

	err = backend.AddLogWriter(&bytes.Buffer{}, LevelInfo)
	if err != nil {
		t.Fatalf("adding a writer to a closed backend: %+v", err)
	}
}

func TestBackendRejectsWritersWhileRunning(t *testing.T) {
	backend := NewBackend()
	err := backend.Run()
	if err != nil {
		t.Fatalf("Run: %+v", err)
	}
	defer backend.Close()

	err = backend.AddLogWriter(&bytes.Buffer{}, LevelInfo)
	if err == nil {
		t.Fatalf("expected an error adding a writer to a running backend")
	}
	err = backend.AddLogFile(filepath.Join(t.TempDir(), "test.log"), LevelInfo)
	if err == nil {
		t.Fatalf("expected an error adding a log file to a running backend")
	}
	err = backend.Run()
	if err == nil {
		t.Fatalf("expected an error running the backend twice")
	}
}

func TestParseAndSetLogLevels(t *testing.T) {
	log := RegisterSubSystem("LTST")

	err := ParseAndSetLogLevels("debug")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelDebug {
		t.Fatalf("expected level %s, got %s", LevelDebug, log.Level())
	}

	err = ParseAndSetLogLevels("LTST=warn")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelWarn {
		t.Fatalf("expected level %s, got %s", LevelWarn, log.Level())
	}

	for _, invalid := range []string{"loud", "LTST=loud", "NOPE=info", "LTST"} {
		err := ParseAndSetLogLevels(invalid)
		if err == nil {
			t.Fatalf("expected an error for log level %q", invalid)
		}
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{input: "trace", expected: LevelTrace, ok: true},
		{input: "WRN", expected: LevelWarn, ok: true},
		{input: "off", expected: LevelOff, ok: true},
		{input: "verbose", expected: LevelInfo, ok: false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Fatalf("LevelFromString(%q): got (%s, %t), expected (%s, %t)",
				test.input, level, ok, test.expected, test.ok)
		}
	}
}
