package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Dedup removes records whose identity key was already seen, keeping the
// first occurrence in input order. Overlapping log sources (a tool migrating
// its data directory, for example) produce logically identical events that
// would otherwise be counted twice.
func Dedup(records []UsageRecord) []UsageRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]UsageRecord, 0, len(records))
	for _, r := range records {
		key := recordHash(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func recordHash(r UsageRecord) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{r.Provider, r.MessageID, r.RequestID}, "|")))
	return hex.EncodeToString(sum[:])
}
