// Package kimi reads Kimi CLI wire logs from $KIMI_HOME/sessions.
package kimi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

const defaultModel = "kimi-for-coding"

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "kimi" }

func (p *Provider) Roots() []string {
	return shared.Roots("KIMI_HOME", []string{"sessions"}, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".kimi", "sessions"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	configModel := readConfigModel()
	files := shared.DiscoverFiles(p.Roots(), "jsonl")
	shared.Run(p.Name(), files, store, progress, func(path string) []core.UsageRecord {
		return parseWire(path, sessionIDFromPath(path), projectFromPath(path), configModel)
	})
}

// readConfigModel picks up the configured model from $KIMI_HOME/config.json
// (or ~/.kimi/config.json). Wire logs rarely repeat the model per line.
func readConfigModel() string {
	base := os.Getenv("KIMI_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultModel
		}
		base = filepath.Join(home, ".kimi")
	}

	content, err := os.ReadFile(filepath.Join(base, "config.json"))
	if err != nil {
		return defaultModel
	}
	var config struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(content, &config); err != nil || config.Model == "" {
		return defaultModel
	}
	return config.Model
}

// Wire files live at sessions/<group>/<session-uuid>/wire.jsonl.
func sessionIDFromPath(path string) string {
	if name := filepath.Base(filepath.Dir(path)); name != "" && name != "." {
		return name
	}
	return "unknown"
}

func projectFromPath(path string) string {
	name := filepath.Base(filepath.Dir(filepath.Dir(path)))
	if name == "" || name == "." || name == "sessions" {
		return "kimi"
	}
	return name
}

type wireLine struct {
	Type      string       `json:"type"`
	Model     string       `json:"model"`
	Timestamp *float64     `json:"timestamp"`
	Message   *wireMessage `json:"message"`
}

type wireMessage struct {
	Type    string       `json:"type"`
	Payload *wirePayload `json:"payload"`
}

type wirePayload struct {
	MessageID  string      `json:"message_id"`
	TokenUsage *tokenUsage `json:"token_usage"`
}

type tokenUsage struct {
	InputOther         uint64 `json:"input_other"`
	Output             uint64 `json:"output"`
	InputCacheRead     uint64 `json:"input_cache_read"`
	InputCacheCreation uint64 `json:"input_cache_creation"`
}

func parseWire(path, sessionID, project, configModel string) []core.UsageRecord {
	var records []core.UsageRecord
	shared.ForEachJSONLLine(path, "token_usage", func(line []byte) {
		var entry wireLine
		if err := json.Unmarshal(line, &entry); err != nil {
			return
		}
		if r, ok := extractStatusUpdate(&entry, sessionID, project, configModel); ok {
			records = append(records, r)
		}
	})
	return records
}

func extractStatusUpdate(entry *wireLine, sessionID, project, configModel string) (core.UsageRecord, bool) {
	if entry.Type == "metadata" {
		return core.UsageRecord{}, false
	}
	if entry.Message == nil || entry.Message.Type != "StatusUpdate" ||
		entry.Message.Payload == nil || entry.Message.Payload.TokenUsage == nil {
		return core.UsageRecord{}, false
	}

	usage := entry.Message.Payload.TokenUsage
	if usage.InputOther == 0 && usage.Output == 0 {
		return core.UsageRecord{}, false
	}
	if entry.Timestamp == nil {
		return core.UsageRecord{}, false
	}
	ts := shared.UnixFloat(*entry.Timestamp)

	model := entry.Model
	if model == "" {
		model = configModel
	}

	messageID := entry.Message.Payload.MessageID
	if messageID == "" {
		messageID = fmt.Sprintf("kimi:%s:%s:%d:%d",
			sessionID, ts.Format(time.RFC3339Nano), usage.InputOther, usage.Output)
	}

	return core.UsageRecord{
		Provider:                 "kimi",
		SessionID:                sessionID,
		Timestamp:                ts,
		Project:                  project,
		Model:                    model,
		MessageID:                messageID,
		InputTokens:              usage.InputOther,
		OutputTokens:             usage.Output,
		CacheCreationInputTokens: usage.InputCacheCreation,
		CacheReadInputTokens:     usage.InputCacheRead,
	}, true
}
