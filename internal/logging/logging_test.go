package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "text", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("decision", "snapshot", "20240610-120000", "action", "keep")
	out := buf.String()
	if !strings.Contains(out, "snapshot=20240610-120000") || !strings.Contains(out, "action=keep") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("decision", "action", "remove")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["action"] != "remove" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "text", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn line missing")
	}
}

func TestInvalidLevelAndFormat(t *testing.T) {
	if _, err := New("loud", "text", nil); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Error("expected error for invalid format")
	}
}
