package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/franzos/tku/internal/paths"
)

// Source selects which public catalog prices come from.
type Source string

const (
	SourceLiteLLM    Source = "litellm"
	SourceOpenRouter Source = "openrouter"
	SourceLLMPrices  Source = "llmprices"
)

const cacheTTL = 24 * time.Hour

var httpClient = &http.Client{Timeout: 30 * time.Second}

func (s Source) url() string {
	switch s {
	case SourceOpenRouter:
		return openrouterURL
	case SourceLLMPrices:
		return llmpricesURL
	default:
		return litellmURL
	}
}

func (s Source) parse(data []byte) (Table, error) {
	switch s {
	case SourceOpenRouter:
		return parseOpenRouter(data)
	case SourceLLMPrices:
		return parseLLMPrices(data)
	default:
		return parseLiteLLM(data)
	}
}

// ParseSource validates a configured source name; empty means LiteLLM.
func ParseSource(name string) (Source, error) {
	switch Source(name) {
	case "", SourceLiteLLM:
		return SourceLiteLLM, nil
	case SourceOpenRouter:
		return SourceOpenRouter, nil
	case SourceLLMPrices:
		return SourceLLMPrices, nil
	}
	return "", fmt.Errorf("pricing: unknown source %q", name)
}

func cachePath(source Source) string {
	dir := paths.CacheDir()
	if dir == "" {
		return ""
	}
	if source == SourceLiteLLM {
		return filepath.Join(dir, "pricing.json")
	}
	return filepath.Join(dir, fmt.Sprintf("pricing-%s.json", source))
}

func cacheIsFresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < cacheTTL
}

// Load returns the pricing table for source. A fresh local cache wins;
// otherwise the catalog is fetched and cached. With offline set, any
// cached copy is accepted regardless of age, and a missing cache is an
// error rather than a silent zero-cost run.
func Load(ctx context.Context, source Source, offline bool) (Table, error) {
	cache := cachePath(source)

	if cache != "" && (offline || cacheIsFresh(cache)) {
		if data, err := os.ReadFile(cache); err == nil {
			if table, err := source.parse(data); err == nil {
				return table, nil
			}
		}
		if offline {
			return nil, fmt.Errorf("pricing: no valid cache for offline mode")
		}
	}
	if offline {
		return nil, fmt.Errorf("pricing: no valid cache for offline mode")
	}

	data, err := fetch(ctx, source.url())
	if err != nil {
		return nil, fmt.Errorf("pricing: fetching catalog: %w", err)
	}
	table, err := source.parse(data)
	if err != nil {
		return nil, fmt.Errorf("pricing: parsing catalog: %w", err)
	}

	if cache != "" {
		if err := os.MkdirAll(filepath.Dir(cache), 0o755); err == nil {
			os.WriteFile(cache, data, 0o644)
		}
	}
	return table, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
