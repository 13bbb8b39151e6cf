// Package gemini reads Gemini CLI chat checkpoints from $GEMINI_HOME/tmp.
package gemini

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Roots() []string {
	return shared.Roots("GEMINI_HOME", []string{"tmp"}, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".gemini", "tmp"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "json")
	shared.Run(p.Name(), files, store, progress, parseSession)
}

type sessionFile struct {
	SessionID   string    `json:"sessionId"`
	ProjectHash string    `json:"projectHash"`
	Messages    []message `json:"messages"`
}

type message struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Model     string  `json:"model"`
	Tokens    *tokens `json:"tokens"`
	Timestamp string  `json:"timestamp"`
}

type tokens struct {
	Input  uint64 `json:"input"`
	Output uint64 `json:"output"`
	Cached uint64 `json:"cached"`
}

func parseSession(path string) []core.UsageRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var session sessionFile
	if err := json.Unmarshal(content, &session); err != nil {
		return nil
	}

	sessionID := session.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}
	project := session.ProjectHash
	if project == "" {
		project = "gemini"
	}

	// Older checkpoints lack per-message timestamps; the file mtime is
	// the best available approximation then.
	df, hasStat := shared.StatFile(path)

	var records []core.UsageRecord
	for _, msg := range session.Messages {
		if msg.Type != "gemini" || msg.Tokens == nil || msg.Model == "" {
			continue
		}
		if msg.Tokens.Input == 0 && msg.Tokens.Output == 0 {
			continue
		}

		ts, ok := shared.ParseTimestamp(msg.Timestamp)
		if !ok {
			if !hasStat {
				continue
			}
			ts = shared.UnixFloat(float64(df.Mtime))
		}

		msgID := msg.ID
		if msgID == "" {
			msgID = "unknown"
		}

		records = append(records, core.UsageRecord{
			Provider:             "gemini",
			SessionID:            sessionID,
			Timestamp:            ts,
			Project:              project,
			Model:                msg.Model,
			MessageID:            fmt.Sprintf("gemini:%s:%s", sessionID, msgID),
			InputTokens:          msg.Tokens.Input,
			OutputTokens:         msg.Tokens.Output,
			CacheReadInputTokens: msg.Tokens.Cached,
		})
	}
	return records
}
