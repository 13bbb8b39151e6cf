// Package exchange converts USD costs into a display currency using
// Frankfurter rates, cached locally for a week.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franzos/tku/internal/paths"
)

const cacheTTL = 7 * 24 * time.Hour

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Rate converts USD amounts into one display currency.
type Rate struct {
	Symbol string
	Rate   float64
	Code   string
}

// USD is the identity rate.
func USD() Rate {
	return Rate{Symbol: "$", Rate: 1.0, Code: "USD"}
}

func (r Rate) Convert(usd float64) float64 {
	return usd * r.Rate
}

// FormatCost renders an optional USD cost in the rate's currency.
// Unpriced stays visibly distinct from zero.
func (r Rate) FormatCost(cost *float64) string {
	if cost == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s%.2f", r.Symbol, r.Convert(*cost))
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"BRL": "R$",
	"CHF": "CHF ",
	"CAD": "CA$",
	"AUD": "A$",
	"SEK": "kr ",
	"NOK": "kr ",
	"DKK": "kr ",
	"PLN": "zł",
	"CZK": "Kč ",
	"TRY": "₺",
	"THB": "฿",
	"MXN": "MX$",
	"ZAR": "R ",
}

func symbolFor(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code + " "
}

func cachePath() string {
	dir := paths.CacheDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "exchange.json")
}

type cachedRate struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
}

// loadCachedRate reads the cached rate for currency; requireFresh limits
// it to the TTL window.
func loadCachedRate(code string, requireFresh bool) (float64, bool) {
	path := cachePath()
	if path == "" {
		return 0, false
	}
	if requireFresh {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) >= cacheTTL {
			return 0, false
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	var cached cachedRate
	if err := json.Unmarshal(data, &cached); err != nil || cached.Code != code {
		return 0, false
	}
	return cached.Rate, true
}

func saveCachedRate(code string, rate float64) {
	path := cachePath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	data, err := json.Marshal(cachedRate{Code: code, Rate: rate})
	if err != nil {
		return
	}
	os.WriteFile(path, data, 0o644)
}

type frankfurterResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func fetchRate(ctx context.Context, code string) (float64, error) {
	url := fmt.Sprintf("https://api.frankfurter.dev/v1/latest?base=USD&symbols=%s", code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	var parsed frankfurterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, err
	}
	rate, ok := parsed.Rates[code]
	if !ok {
		return 0, fmt.Errorf("currency %s not in response", code)
	}
	return rate, nil
}

// Load resolves the display rate for currency. Failures never abort a
// run: stale cache is used when available, USD otherwise, each with a
// stderr warning.
func Load(ctx context.Context, currency string, offline bool) Rate {
	code := strings.ToUpper(currency)
	if code == "USD" {
		return USD()
	}
	symbol := symbolFor(code)

	if rate, ok := loadCachedRate(code, true); ok {
		return Rate{Symbol: symbol, Rate: rate, Code: code}
	}

	if offline {
		if rate, ok := loadCachedRate(code, false); ok {
			fmt.Fprintf(os.Stderr, "Warning: using stale exchange rate for %s\n", code)
			return Rate{Symbol: symbol, Rate: rate, Code: code}
		}
		fmt.Fprintf(os.Stderr, "Warning: no cached exchange rate for %s, falling back to USD\n", code)
		return USD()
	}

	rate, err := fetchRate(ctx, code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to fetch exchange rate for %s: %v\n", code, err)
		if cached, ok := loadCachedRate(code, false); ok {
			fmt.Fprintf(os.Stderr, "Using cached rate for %s\n", code)
			return Rate{Symbol: symbol, Rate: cached, Code: code}
		}
		fmt.Fprintln(os.Stderr, "Falling back to USD")
		return USD()
	}

	saveCachedRate(code, rate)
	return Rate{Symbol: symbol, Rate: rate, Code: code}
}
