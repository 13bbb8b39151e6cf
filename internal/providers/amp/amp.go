// Package amp reads Amp thread files from $AMP_DATA_DIR/threads.
package amp

import (
	"encoding/json"
	"os"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "amp" }

func (p *Provider) Roots() []string {
	return shared.Roots("AMP_DATA_DIR", []string{"threads"}, []shared.HomeFallback{
		{Base: shared.BaseData, Subpaths: []string{"amp", "threads"}},
	})
}

func (p *Provider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	files := shared.DiscoverFiles(p.Roots(), "json")
	shared.Run(p.Name(), files, store, progress, parseThread)
}

type threadFile struct {
	ID          string       `json:"id"`
	Messages    []threadMsg  `json:"messages"`
	UsageLedger *usageLedger `json:"usageLedger"`
}

type threadMsg struct {
	Role      string    `json:"role"`
	MessageID *uint64   `json:"messageId"`
	Usage     *msgUsage `json:"usage"`
}

type msgUsage struct {
	CacheCreationInputTokens uint64 `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     uint64 `json:"cacheReadInputTokens"`
}

type usageLedger struct {
	Events []ledgerEvent `json:"events"`
}

type ledgerEvent struct {
	ID          string        `json:"id"`
	Timestamp   string        `json:"timestamp"`
	Model       string        `json:"model"`
	ToMessageID *uint64       `json:"toMessageId"`
	Tokens      *ledgerTokens `json:"tokens"`
}

type ledgerTokens struct {
	Input  uint64 `json:"input"`
	Output uint64 `json:"output"`
}

// cacheTokens holds the cache counters a ledger event has to borrow from
// its assistant message, since the ledger itself only carries input and
// output.
type cacheTokens struct {
	creation uint64
	read     uint64
}

func parseThread(path string) []core.UsageRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var thread threadFile
	if err := json.Unmarshal(content, &thread); err != nil {
		return nil
	}

	threadID := thread.ID
	if threadID == "" {
		threadID = "unknown"
	}
	if thread.UsageLedger == nil {
		return nil
	}

	cacheByMsg := make(map[uint64]cacheTokens)
	for _, msg := range thread.Messages {
		if msg.Role != "assistant" || msg.MessageID == nil || msg.Usage == nil {
			continue
		}
		cacheByMsg[*msg.MessageID] = cacheTokens{
			creation: msg.Usage.CacheCreationInputTokens,
			read:     msg.Usage.CacheReadInputTokens,
		}
	}

	var records []core.UsageRecord
	for _, event := range thread.UsageLedger.Events {
		if event.Tokens == nil {
			continue
		}
		ts, ok := shared.ParseTimestamp(event.Timestamp)
		if !ok {
			continue
		}

		model := event.Model
		if model == "" {
			model = "unknown"
		}

		var cache cacheTokens
		if event.ToMessageID != nil {
			cache = cacheByMsg[*event.ToMessageID]
		}

		records = append(records, core.UsageRecord{
			Provider:                 "amp",
			SessionID:                threadID,
			Timestamp:                ts,
			Project:                  "amp",
			Model:                    model,
			MessageID:                event.ID,
			InputTokens:              event.Tokens.Input,
			OutputTokens:             event.Tokens.Output,
			CacheCreationInputTokens: cache.creation,
			CacheReadInputTokens:     cache.read,
		})
	}
	return records
}
