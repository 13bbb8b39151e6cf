package engine

import (
	"testing"
	"time"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/providers/shared"
	"github.com/franzos/tku/internal/storage"
)

type stubProvider struct {
	name    string
	records []core.UsageRecord
}

func (p *stubProvider) Name() string    { return p.name }
func (p *stubProvider) Roots() []string { return nil }

func (p *stubProvider) DiscoverAndParse(store storage.Store, progress shared.ProgressFunc) {
	store.Insert(p.name, "/virtual/"+p.name+".jsonl", 1, 1, p.records)
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
}

func TestScan(t *testing.T) {
	provs := []shared.Provider{
		&stubProvider{name: "claude", records: []core.UsageRecord{
			{Provider: "claude", MessageID: "m1", Timestamp: at(1), InputTokens: 10},
			{Provider: "claude", MessageID: "m1", Timestamp: at(1), InputTokens: 10},
		}},
		&stubProvider{name: "codex", records: []core.UsageRecord{
			{Provider: "codex", MessageID: "m1", Timestamp: at(2), InputTokens: 20},
		}},
	}

	records := Scan(storage.NewBlobStore(""), provs, nil)
	if len(records) != 2 {
		t.Fatalf("expected duplicate collapsed, got %d records", len(records))
	}
}

func TestFilter(t *testing.T) {
	records := []core.UsageRecord{
		{Provider: "claude", Project: "My-App", Timestamp: at(1)},
		{Provider: "claude", Project: "other", Timestamp: at(5)},
		{Provider: "codex", Project: "my-app-api", Timestamp: at(10)},
	}

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"empty passthrough", Options{}, 3},
		{"from", Options{FromDate: "2026-03-05"}, 2},
		{"to", Options{ToDate: "2026-03-05"}, 2},
		{"range", Options{FromDate: "2026-03-02", ToDate: "2026-03-09"}, 1},
		{"inclusive bounds", Options{FromDate: "2026-03-01", ToDate: "2026-03-10"}, 3},
		{"project substring", Options{Project: "my-app"}, 2},
		{"tool exact", Options{Tool: "CODEX"}, 1},
		{"tool no partial match", Options{Tool: "code"}, 0},
		{"combined", Options{Project: "my-app", Tool: "claude"}, 1},
	}
	for _, tt := range tests {
		if got := Filter(records, tt.opts); len(got) != tt.want {
			t.Errorf("%s: got %d records, want %d", tt.name, len(got), tt.want)
		}
	}
}

func TestFilter_EmptyReturnsSameSlice(t *testing.T) {
	records := []core.UsageRecord{{Provider: "claude"}}
	got := Filter(records, Options{})
	if &got[0] != &records[0] {
		t.Error("empty options should not copy the slice")
	}
}
