// Package openclaw reads OpenClaw agent transcripts, including the
// historical dot-directories the tool has shipped under.
package openclaw

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

func (p *Provider) Name() string { return "openclaw" }

func (p *Provider) Roots() []string {
	return shared.Roots("", nil, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".openclaw", "agents"}},
		{Base: shared.BaseHome, Subpaths: []string{".clawdbot", "agents"}},
		{Base: shared.BaseHome, Subpaths: []string{".moltbot", "agents"}},
		{Base: shared.BaseHome, Subpaths: []string{".moldbot", "agents"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "jsonl")
	shared.Run(p.Name(), files, store, progress, func(path string) []core.UsageRecord {
		return parseTranscript(path, sessionIDFromPath(path), projectFromPath(path))
	})
}

func sessionIDFromPath(path string) string {
	if stem := strings.TrimSuffix(filepath.Base(path), ".jsonl"); stem != "" {
		return stem
	}
	return "unknown"
}

func projectFromPath(path string) string {
	norm := filepath.ToSlash(path)
	if idx := strings.Index(norm, "/agents/"); idx >= 0 {
		after := norm[idx+len("/agents/"):]
		if dir, _, ok := strings.Cut(after, "/"); ok && dir != "" {
			return dir
		}
	}
	return "openclaw"
}

type transcriptLine struct {
	Model   string        `json:"model"`
	Message *assistantMsg `json:"message"`
}

type assistantMsg struct {
	Role      string     `json:"role"`
	Model     string     `json:"model"`
	Timestamp *int64     `json:"timestamp"`
	Usage     *usageInfo `json:"usage"`
}

type usageInfo struct {
	Input      uint64 `json:"input"`
	Output     uint64 `json:"output"`
	CacheRead  uint64 `json:"cacheRead"`
	CacheWrite uint64 `json:"cacheWrite"`
}

// parseTranscript is stateful: model_change lines set the model for
// subsequent assistant messages that do not name their own.
func parseTranscript(path, sessionID, project string) []core.UsageRecord {
	var records []core.UsageRecord
	currentModel := "unknown"

	shared.ForEachJSONLLine(path, "", func(line []byte) {
		s := string(line)

		if strings.Contains(s, `"model_change"`) {
			var entry transcriptLine
			if err := json.Unmarshal(line, &entry); err == nil && entry.Model != "" {
				currentModel = entry.Model
			}
			return
		}
		if !strings.Contains(s, `"message"`) || !strings.Contains(s, `"assistant"`) {
			return
		}

		var entry transcriptLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return
		}
		if r, ok := extractMessage(&entry, sessionID, project, currentModel); ok {
			records = append(records, r)
		}
	})
	return records
}

func extractMessage(entry *transcriptLine, sessionID, project, currentModel string) (core.UsageRecord, bool) {
	msg := entry.Message
	if msg == nil || msg.Role != "assistant" || msg.Usage == nil || msg.Timestamp == nil {
		return core.UsageRecord{}, false
	}
	if msg.Usage.Input == 0 && msg.Usage.Output == 0 {
		return core.UsageRecord{}, false
	}

	model := msg.Model
	if model == "" {
		model = currentModel
	}
	ts := shared.UnixMillis(*msg.Timestamp)

	messageID := fmt.Sprintf("openclaw:%s:%s:%d:%d",
		sessionID, ts.Format(time.RFC3339Nano), msg.Usage.Input, msg.Usage.Output)

	return core.UsageRecord{
		Provider:                 "openclaw",
		SessionID:                sessionID,
		Timestamp:                ts,
		Project:                  project,
		Model:                    model,
		MessageID:                messageID,
		InputTokens:              msg.Usage.Input,
		OutputTokens:             msg.Usage.Output,
		CacheCreationInputTokens: msg.Usage.CacheWrite,
		CacheReadInputTokens:     msg.Usage.CacheRead,
	}, true
}
