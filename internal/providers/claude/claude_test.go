package claude

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTranscript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects", "-home-franz-git-my-app", "abc123.jsonl")
	writeTranscript(t, path, `{"type":"user","timestamp":"2026-01-15T10:00:00Z"}
{"type":"assistant","timestamp":"2026-01-15T10:00:05Z","requestId":"req-1","message":{"id":"msg-1","model":"claude-opus-4-5","usage":{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":10,"cache_read_input_tokens":200}}}
{"type":"assistant","timestamp":"2026-01-15T10:00:10Z","message":{"id":"msg-2","model":"<synthetic>","usage":{"input_tokens":1,"output_tokens":1}}}
{"type":"assistant","timestamp":"not-a-date","message":{"id":"msg-3","model":"claude-opus-4-5","usage":{"input_tokens":1,"output_tokens":1}}}
not json at all
`)

	records := parseTranscript(path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(records), records)
	}

	r := records[0]
	if r.Provider != "claude" || r.SessionID != "abc123" {
		t.Errorf("identity wrong: %+v", r)
	}
	if r.Project != "my-app" {
		t.Errorf("project = %q, want my-app", r.Project)
	}
	if r.Model != "claude-opus-4-5" || r.MessageID != "msg-1" || r.RequestID != "req-1" {
		t.Errorf("message fields wrong: %+v", r)
	}
	if r.InputTokens != 100 || r.OutputTokens != 50 || r.CacheCreationInputTokens != 10 || r.CacheReadInputTokens != 200 {
		t.Errorf("token counts wrong: %+v", r)
	}
}

func TestParseTranscript_CWDOverridesProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects", "-home-franz-git-old-name", "s.jsonl")
	writeTranscript(t, path, `{"type":"assistant","timestamp":"2026-01-15T10:00:00Z","cwd":"/home/franz/git/renamed-app","message":{"id":"m1","model":"claude-opus-4-5","usage":{"input_tokens":1,"output_tokens":1}}}
`)

	records := parseTranscript(path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Project != "renamed-app" {
		t.Errorf("project = %q, want renamed-app", records[0].Project)
	}
}

func TestParseTranscript_AgentProgress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects", "-home-franz-git-app", "s.jsonl")
	writeTranscript(t, path, `{"type":"progress","timestamp":"2026-01-15T11:00:00Z","data":{"type":"agent_progress","message":{"requestId":"req-9","message":{"id":"sub-1","model":"claude-haiku-4-5","usage":{"input_tokens":5,"output_tokens":7}}}}}
{"type":"progress","timestamp":"2026-01-15T11:00:01Z","data":{"type":"other_progress","message":{"message":{"id":"x","model":"claude-haiku-4-5","usage":{"input_tokens":1,"output_tokens":1}}}}}
`)

	records := parseTranscript(path)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.MessageID != "sub-1" || r.RequestID != "req-9" {
		t.Errorf("nested message fields wrong: %+v", r)
	}
	// Inner timestamp missing, outer one applies.
	if r.Timestamp.Hour() != 11 {
		t.Errorf("timestamp fallback wrong: %v", r.Timestamp)
	}
	if r.InputTokens != 5 || r.OutputTokens != 7 {
		t.Errorf("token counts wrong: %+v", r)
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := []struct {
		encoded string
		want    string
	}{
		{"-home-franz-git-foo-bar", "foo-bar"},
		{"-home-franz-projects-site", "site"},
		{"-home-franz-deep-nested-thing", "deep-nested-thing"},
		{"-tmp-scratch", "scratch"},
		{"-home-franz", "franz"},
		{"---", "unknown"},
	}
	for _, tt := range tests {
		if got := decodeProjectName(tt.encoded); got != tt.want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", tt.encoded, got, tt.want)
		}
	}
}
