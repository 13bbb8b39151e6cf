package gemini

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	content := `{
		"sessionId": "sess-1",
		"projectHash": "abc123",
		"messages": [
			{"id": "m1", "type": "gemini", "model": "gemini-2.5-pro",
			 "tokens": {"input": 100, "output": 50, "cached": 20},
			 "timestamp": "2026-01-15T10:00:00Z"},
			{"id": "m2", "type": "user", "model": "gemini-2.5-pro",
			 "tokens": {"input": 1, "output": 1}},
			{"id": "m3", "type": "gemini", "model": "",
			 "tokens": {"input": 1, "output": 1}},
			{"id": "m4", "type": "gemini", "model": "gemini-2.5-pro",
			 "tokens": {"input": 0, "output": 0, "cached": 99}}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records := parseSession(path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(records), records)
	}
	r := records[0]
	if r.SessionID != "sess-1" || r.Project != "abc123" {
		t.Errorf("identity wrong: %+v", r)
	}
	if r.MessageID != "gemini:sess-1:m1" {
		t.Errorf("message id = %q", r.MessageID)
	}
	if r.InputTokens != 100 || r.OutputTokens != 50 || r.CacheReadInputTokens != 20 {
		t.Errorf("token counts wrong: %+v", r)
	}
}

func TestParseSession_MtimeFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	content := `{"sessionId": "s", "messages": [
		{"id": "m1", "type": "gemini", "model": "gemini-2.5-pro",
		 "tokens": {"input": 10, "output": 5}}
	]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	records := parseSession(path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Timestamp.Equal(mtime) {
		t.Errorf("expected mtime fallback %v, got %v", mtime, records[0].Timestamp)
	}
	if records[0].Project != "gemini" {
		t.Errorf("expected default project, got %q", records[0].Project)
	}
}

func TestParseSession_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if records := parseSession(path); records != nil {
		t.Fatalf("expected nil for malformed file, got %v", records)
	}
}
