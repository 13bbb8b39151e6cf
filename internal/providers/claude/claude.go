// Package claude reads Claude Code session transcripts from
// ~/.claude/projects (or the XDG config equivalent).
package claude

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "claude" }

func (p *Provider) Roots() []string {
	return shared.Roots("", nil, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".claude", "projects"}},
		{Base: shared.BaseConfig, Subpaths: []string{"claude", "projects"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "jsonl")
	shared.Run(p.Name(), files, store, progress, parseTranscript)
}

type transcriptLine struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	RequestID string          `json:"requestId"`
	CWD       string          `json:"cwd"`
	Message   *assistantMsg   `json:"message"`
	Data      *agentEventData `json:"data"`
}

type assistantMsg struct {
	ID    string     `json:"id"`
	Model string     `json:"model"`
	Usage *usageInfo `json:"usage"`
}

type agentEventData struct {
	Type    string        `json:"type"`
	Message *agentMessage `json:"message"`
}

// agentMessage wraps a nested assistant message emitted by subagent
// progress events; the usage payload lives one level deeper than on a
// regular assistant line.
type agentMessage struct {
	Timestamp string        `json:"timestamp"`
	RequestID string        `json:"requestId"`
	Message   *assistantMsg `json:"message"`
}

type usageInfo struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

func parseTranscript(path string) []core.UsageRecord {
	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	project := projectFromPath(path)

	var records []core.UsageRecord
	shared.ForEachJSONLLine(path, `"type":`, func(line []byte) {
		s := string(line)
		if !strings.Contains(s, `"type":"assistant"`) && !strings.Contains(s, `"type":"progress"`) {
			return
		}

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
	var msg *assistantMsg
	var tsStr, requestID string

	switch entry.Type {
	case "assistant":
		msg = entry.Message
		tsStr = entry.Timestamp
		requestID = entry.RequestID
	case "progress":
		if entry.Data == nil || entry.Data.Type != "agent_progress" || entry.Data.Message == nil {
			return core.UsageRecord{}, false
		}
		outer := entry.Data.Message
		msg = outer.Message
		tsStr = outer.Timestamp
		if tsStr == "" {
			tsStr = entry.Timestamp
		}
		requestID = outer.RequestID
	default:
		return core.UsageRecord{}, false
	}

	if msg == nil || msg.Usage == nil || msg.Model == "" || msg.Model == "<synthetic>" {
		return core.UsageRecord{}, false
	}
	ts, ok := shared.ParseTimestamp(tsStr)
	if !ok {
		return core.UsageRecord{}, false
	}

	// cwd gives the live project name; the encoded directory is only a
	// fallback for older transcripts.
	if entry.CWD != "" {
		if base := entry.CWD[strings.LastIndex(entry.CWD, "/")+1:]; base != "" {
			project = base
		}
	}

	return core.UsageRecord{
		Provider:                 "claude",
		SessionID:                sessionID,
		Timestamp:                ts,
		Project:                  project,
		Model:                    msg.Model,
		MessageID:                msg.ID,
		RequestID:                requestID,
		InputTokens:              msg.Usage.InputTokens,
		OutputTokens:             msg.Usage.OutputTokens,
		CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
	}, true
}

// projectFromPath finds the directory directly under "projects" and decodes
// its name.
func projectFromPath(path string) string {
	dir := filepath.Dir(path)
	for dir != "" {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if filepath.Base(parent) == "projects" {
			return decodeProjectName(filepath.Base(dir))
		}
		dir = parent
	}
	return "unknown"
}

// decodeProjectName turns an encoded projects folder name like
// "-home-franz-git-foo-bar" into "foo-bar".
func decodeProjectName(encoded string) string {
	var parts []string
	for _, p := range strings.Split(encoded, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}

	markers := []string{"git", "projects", "src", "code", "repos", "workspace"}
	for _, marker := range markers {
		for i, p := range parts {
			if p == marker && i+1 < len(parts) {
				return strings.Join(parts[i+1:], "-")
			}
		}
	}

	if len(parts) >= 3 && parts[0] == "home" {
		return strings.Join(parts[2:], "-")
	}
	return parts[len(parts)-1]
}
