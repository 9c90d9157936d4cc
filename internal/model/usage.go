package model

import (
	"encoding/json"
	"fmt"
)

// LogEntry represents a single line of a Claude Code JSONL session log
type LogEntry struct {
	Message   *Message `json:"message,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	AgentID   string   `json:"agentId,omitempty"`
}

// Message is the assistant message carried by a log entry
type Message struct {
	Model string `json:"model,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts from a Claude API response
type Usage struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

// UnmarshalJSON rejects null counters. Absent counters default to zero.
func (u *Usage) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range []string{
		"input_tokens", "output_tokens", "cache_creation_input_tokens", "cache_read_input_tokens",
	} {
		if raw, ok := fields[name]; ok && string(raw) == "null" {
			return fmt.Errorf("usage field %s is null", name)
		}
	}

	type plain Usage
	return json.Unmarshal(data, (*plain)(u))
}

// Total returns the sum of all four counters
func (u Usage) Total() uint64 {
	return u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
}

// UsageOf returns the usage carried by the entry, if any
func (e LogEntry) UsageOf() (Usage, bool) {
	if e.Message == nil || e.Message.Usage == nil {
		return Usage{}, false
	}
	return *e.Message.Usage, true
}

// AggregatedUsage is a running sum of usage counters. The zero value is empty.
type AggregatedUsage struct {
	TotalInput         uint64 `json:"total_input"`
	TotalOutput        uint64 `json:"total_output"`
	TotalCacheCreation uint64 `json:"total_cache_creation"`
	TotalCacheRead     uint64 `json:"total_cache_read"`
	MessageCount       uint64 `json:"message_count"`
}

// Add folds one message's usage into the aggregate
func (a *AggregatedUsage) Add(u Usage) {
	a.TotalInput += u.InputTokens
	a.TotalOutput += u.OutputTokens
	a.TotalCacheCreation += u.CacheCreationInputTokens
	a.TotalCacheRead += u.CacheReadInputTokens
	a.MessageCount++
}

// Merge adds another aggregate field by field
func (a *AggregatedUsage) Merge(other AggregatedUsage) {
	a.TotalInput += other.TotalInput
	a.TotalOutput += other.TotalOutput
	a.TotalCacheCreation += other.TotalCacheCreation
	a.TotalCacheRead += other.TotalCacheRead
	a.MessageCount += other.MessageCount
}

// Total returns the sum of the four token counters
func (a AggregatedUsage) Total() uint64 {
	return a.TotalInput + a.TotalOutput + a.TotalCacheCreation + a.TotalCacheRead
}
