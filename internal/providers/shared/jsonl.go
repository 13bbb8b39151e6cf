package shared

import (
	"bufio"
	"os"
	"strings"
	"time"
)

const (
	scannerInitialBuf = 512 * 1024
	scannerMaxBuf     = 8 * 1024 * 1024
)

// ForEachJSONLLine streams a JSONL file line by line, skipping blanks and,
// when filter is non-empty, lines that do not contain it (a cheap substring
// check before any JSON decoding). Lines the callback cannot use are simply
// skipped; the file is processed best effort.
func ForEachJSONLLine(path, filter string, fn func(line []byte)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, scannerInitialBuf), scannerMaxBuf)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if filter != "" && !strings.Contains(string(line), filter) {
			continue
		}
		fn(line)
	}
}

// ParseTimestamp accepts the RFC 3339 shapes the tools emit, with or
// without sub-second precision, and normalizes to UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// UnixFloat converts a fractional Unix-seconds timestamp to UTC.
func UnixFloat(secs float64) time.Time {
	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// UnixMillis converts a Unix-milliseconds timestamp to UTC.
func UnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
