// Package pi reads Pi agent session transcripts from
// $PI_AGENT_DIR/sessions.
package pi

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "pi" }

func (p *Provider) Roots() []string {
	return shared.Roots("PI_AGENT_DIR", []string{"sessions"}, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".pi", "agent", "sessions"}},
		{Base: shared.BaseConfig, Subpaths: []string{"pi", "agent", "sessions"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "jsonl")
	shared.Run(p.Name(), files, store, progress, func(path string) []core.UsageRecord {
		return parseTranscript(path, sessionIDFromPath(path), projectFromPath(path))
	})
}

// File names look like "2025-12-19T08-12-33-794Z_<uuid>.jsonl"; the part
// after the first underscore is the session id.
func sessionIDFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if _, after, ok := strings.Cut(stem, "_"); ok && after != "" {
		return after
	}
	if stem == "" {
		return "unknown"
	}
	return stem
}

func projectFromPath(path string) string {
	norm := filepath.ToSlash(path)
	if idx := strings.Index(norm, "/sessions/"); idx >= 0 {
		after := norm[idx+len("/sessions/"):]
		if dir, _, ok := strings.Cut(after, "/"); ok && dir != "" {
			return dir
		}
	}
	return "pi"
}

type transcriptLine struct {
	Timestamp string        `json:"timestamp"`
	Message   *assistantMsg `json:"message"`
}

type assistantMsg struct {
	Role  string     `json:"role"`
	Model string     `json:"model"`
	Usage *usageInfo `json:"usage"`
}

type usageInfo struct {
	Input      *uint64 `json:"input"`
	Output     *uint64 `json:"output"`
	CacheRead  uint64  `json:"cacheRead"`
	CacheWrite uint64  `json:"cacheWrite"`
}

func parseTranscript(path, sessionID, project string) []core.UsageRecord {
	var records []core.UsageRecord
	shared.ForEachJSONLLine(path, `"assistant"`, func(line []byte) {
		var entry transcriptLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return
		}
		if r, ok := extractRecord(&entry, sessionID, project); ok {
			records = append(records, r)
		}
	})
	return records
}

func extractRecord(entry *transcriptLine, sessionID, project string) (core.UsageRecord, bool) {
	ts, ok := shared.ParseTimestamp(entry.Timestamp)
	if !ok {
		return core.UsageRecord{}, false
	}
	msg := entry.Message
	if msg == nil || msg.Role != "assistant" || msg.Usage == nil {
		return core.UsageRecord{}, false
	}
	// Input and output must both be present; missing counters mean the
	// turn never completed.
	if msg.Usage.Input == nil || msg.Usage.Output == nil {
		return core.UsageRecord{}, false
	}
	input, output := *msg.Usage.Input, *msg.Usage.Output

	model := msg.Model
	if model == "" {
		model = "unknown"
	}

	messageID := fmt.Sprintf("pi:%s:%s:%d:%d",
		sessionID, ts.Format(time.RFC3339Nano), input, output)

	return core.UsageRecord{
		Provider:                 "pi",
		SessionID:                sessionID,
		Timestamp:                ts,
		Project:                  project,
		Model:                    model,
		MessageID:                messageID,
		InputTokens:              input,
		OutputTokens:             output,
		CacheCreationInputTokens: msg.Usage.CacheWrite,
		CacheReadInputTokens:     msg.Usage.CacheRead,
	}, true
}
