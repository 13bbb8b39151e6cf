// Package droid reads Factory Droid session settings from
// $FACTORY_HOME/sessions. Each session keeps running token totals in a
// *.settings.json file, so one file yields at most one record.
package droid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "droid" }

func (p *Provider) Roots() []string {
	return shared.Roots("FACTORY_HOME", []string{"sessions"}, []shared.HomeFallback{
		{Base: shared.BaseHome, Subpaths: []string{".factory", "sessions"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	var files []shared.DiscoveredFile
	for _, f := range shared.DiscoverFiles(p.Roots(), "json") {
		if strings.HasSuffix(filepath.Base(f.Path), ".settings.json") {
			files = append(files, f)
		}
	}
	shared.Run(p.Name(), files, store, progress, parseSettings)
}

type settingsFile struct {
	TokenUsage            *sessionTokens `json:"tokenUsage"`
	ProviderLockTimestamp string         `json:"providerLockTimestamp"`
	Model                 string         `json:"model"`
}

type sessionTokens struct {
	InputTokens         uint64 `json:"inputTokens"`
	OutputTokens        uint64 `json:"outputTokens"`
	CacheCreationTokens uint64 `json:"cacheCreationTokens"`
	CacheReadTokens     uint64 `json:"cacheReadTokens"`
}

func parseSettings(path string) []core.UsageRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var settings settingsFile
	if err := json.Unmarshal(content, &settings); err != nil {
		return nil
	}
	if settings.TokenUsage == nil {
		return nil
	}
	usage := settings.TokenUsage
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return nil
	}

	model := "unknown"
	if settings.Model != "" {
		model = normalizeModel(settings.Model)
	}

	sessionID := strings.TrimSuffix(filepath.Base(path), ".settings.json")
	if sessionID == "" {
		sessionID = "unknown"
	}

	ts, ok := shared.ParseTimestamp(settings.ProviderLockTimestamp)
	if !ok {
		if df, statted := shared.StatFile(path); statted {
			ts = shared.UnixFloat(float64(df.Mtime))
		} else {
			ts = time.Now().UTC()
		}
	}

	messageID := fmt.Sprintf("droid:%s:%s:%d:%d",
		sessionID, ts.Format(time.RFC3339Nano), usage.InputTokens, usage.OutputTokens)

	return []core.UsageRecord{{
		Provider:                 "droid",
		SessionID:                sessionID,
		Timestamp:                ts,
		Project:                  "droid",
		Model:                    model,
		MessageID:                messageID,
		InputTokens:              usage.InputTokens,
		OutputTokens:             usage.OutputTokens,
		CacheCreationInputTokens: usage.CacheCreationTokens,
		CacheReadInputTokens:     usage.CacheReadTokens,
	}}
}

// normalizeModel canonicalizes display names: the "custom:" prefix and
// "[Provider]" brackets go, dots become hyphens, runs of hyphens collapse.
func normalizeModel(raw string) string {
	s := strings.TrimPrefix(raw, "custom:")

	for {
		start := strings.Index(s, "[")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "]")
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
