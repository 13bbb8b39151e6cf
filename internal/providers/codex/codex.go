// Package codex reads Codex CLI rollout logs from $CODEX_HOME/sessions.
package codex

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

// Token counters on rollout lines are cumulative per session; the parser
// keeps the previous totals to emit per-turn deltas.
const defaultModel = "gpt-5"

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "codex" }

func (p *Provider) Roots() []string {
	return shared.Roots("CODEX_HOME", []string{"sessions"}, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".codex", "sessions"}},
		{Base: shared.BaseConfig, Subpaths: []string{"codex", "sessions"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "jsonl")
	shared.Run(p.Name(), files, store, progress, func(path string) []core.UsageRecord {
		sessionID := sessionIDFromPath(path)
		return parseRollout(path, sessionID, projectFromSessionID(sessionID))
	})
}

// sessionIDFromPath keeps the path relative to sessions/, without the
// .jsonl suffix.
func sessionIDFromPath(path string) string {
	norm := filepath.ToSlash(path)
	if idx := strings.Index(norm, "/sessions/"); idx >= 0 {
		return strings.TrimSuffix(norm[idx+len("/sessions/"):], ".jsonl")
	}
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}

func projectFromSessionID(sessionID string) string {
	first, _, _ := strings.Cut(sessionID, "/")
	if first == "" {
		return "codex"
	}
	return first
}

type rolloutLine struct {
	Timestamp string          `json:"timestamp"`
	Payload   *rolloutPayload `json:"payload"`
}

type rolloutPayload struct {
	Type     string       `json:"type"`
	Model    string       `json:"model"`
	Metadata *rolloutMeta `json:"metadata"`
	Info     *tokenInfo   `json:"info"`
}

type rolloutMeta struct {
	Model string `json:"model"`
}

type tokenInfo struct {
	Model           string       `json:"model"`
	Metadata        *rolloutMeta `json:"metadata"`
	LastTokenUsage  *tokenUsage  `json:"last_token_usage"`
	TotalTokenUsage *tokenUsage  `json:"total_token_usage"`
}

type tokenUsage struct {
	InputTokens          uint64  `json:"input_tokens"`
	OutputTokens         uint64  `json:"output_tokens"`
	CachedInputTokens    *uint64 `json:"cached_input_tokens"`
	CacheReadInputTokens *uint64 `json:"cache_read_input_tokens"`
}

func (u *tokenUsage) cached() uint64 {
	if u.CachedInputTokens != nil {
		return *u.CachedInputTokens
	}
	if u.CacheReadInputTokens != nil {
		return *u.CacheReadInputTokens
	}
	return 0
}

type cumulativeTotals struct {
	input  uint64
	output uint64
	cached uint64
}

func parseRollout(path, sessionID, project string) []core.UsageRecord {
	var records []core.UsageRecord
	var lastModel string
	var prev cumulativeTotals

	shared.ForEachJSONLLine(path, "", func(line []byte) {
		s := string(line)

		if strings.Contains(s, `"turn_context"`) {
			var entry rolloutLine
			if err := json.Unmarshal(line, &entry); err == nil && entry.Payload != nil {
				if m := contextModel(entry.Payload); m != "" {
					lastModel = m
				}
			}
			return
		}
		if !strings.Contains(s, `"token_count"`) {
			return
		}

		var entry rolloutLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return
		}
		if r, ok := extractTokenEvent(&entry, sessionID, project, lastModel, &prev); ok {
			records = append(records, r)
		}
	})
	return records
}

// contextModel looks for the model in the places turn_context lines have
// carried it across versions.
func contextModel(p *rolloutPayload) string {
	if p.Info != nil {
		if p.Info.Model != "" {
			return p.Info.Model
		}
		if p.Info.Metadata != nil && p.Info.Metadata.Model != "" {
			return p.Info.Metadata.Model
		}
	}
	if p.Model != "" {
		return p.Model
	}
	if p.Metadata != nil && p.Metadata.Model != "" {
		return p.Metadata.Model
	}
	return ""
}

func extractTokenEvent(entry *rolloutLine, sessionID, project, lastModel string, prev *cumulativeTotals) (core.UsageRecord, bool) {
	p := entry.Payload
	if p == nil || p.Type != "token_count" || p.Info == nil {
		return core.UsageRecord{}, false
	}
	ts, ok := shared.ParseTimestamp(entry.Timestamp)
	if !ok {
		return core.UsageRecord{}, false
	}

	model := contextModel(p)
	if model == "" {
		model = lastModel
	}
	if model == "" {
		model = defaultModel
	}

	var input, output, cached uint64
	switch {
	case p.Info.LastTokenUsage != nil:
		last := p.Info.LastTokenUsage
		input, output, cached = last.InputTokens, last.OutputTokens, last.cached()
	case p.Info.TotalTokenUsage != nil:
		total := p.Info.TotalTokenUsage
		input = saturatingSub(total.InputTokens, prev.input)
		output = saturatingSub(total.OutputTokens, prev.output)
		cached = saturatingSub(total.cached(), prev.cached)
		prev.input = total.InputTokens
		prev.output = total.OutputTokens
		prev.cached = total.cached()
	default:
		return core.UsageRecord{}, false
	}

	if input == 0 && output == 0 && cached == 0 {
		return core.UsageRecord{}, false
	}

	// Rollout lines carry no message id; synthesize a stable one so
	// re-parses of the same file dedup cleanly.
	messageID := fmt.Sprintf("codex:%s:%s:%d:%d",
		sessionID, ts.Format(time.RFC3339Nano), input, output)

	return core.UsageRecord{
		Provider:             "codex",
		SessionID:            sessionID,
		Timestamp:            ts,
		Project:              project,
		Model:                model,
		MessageID:            messageID,
		InputTokens:          input,
		OutputTokens:         output,
		CacheReadInputTokens: cached,
	}, true
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
