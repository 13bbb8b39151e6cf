package core

import "time"

// UsageRecord is one normalized usage event extracted from a coding tool's
// local logs. (Provider, MessageID, RequestID) is the identity key used for
// cross-tool dedup; tools without stable ids synthesize composite message ids.
type UsageRecord struct {
	Provider  string    `json:"provider"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Project   string    `json:"project"`
	Model     string    `json:"model"`
	MessageID string    `json:"message_id"`
	RequestID string    `json:"request_id"`

	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}
