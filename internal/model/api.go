package model

import (
	"strings"

	"github.com/samber/lo"
)

// UsageResponse is the body returned by the usage report API
type UsageResponse struct {
	Data     []UsageRecord `json:"data"`
	HasMore  bool          `json:"has_more"`
	NextPage string        `json:"next_page,omitempty"`
}

// UsageRecord is one time bucket of reported usage
type UsageRecord struct {
	StartingAt string        `json:"starting_at"`
	EndingAt   string        `json:"ending_at"`
	Results    []UsageDetail `json:"results"`
}

// UsageDetail holds the counters reported inside a bucket
type UsageDetail struct {
	InputTokens              uint64 `json:"input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
}

// Total returns input + output + cache tokens for the detail
func (d UsageDetail) Total() uint64 {
	return d.InputTokens + d.OutputTokens + d.CacheCreationInputTokens + d.CacheReadInputTokens
}

// Total returns all tokens reported in the bucket
func (r UsageRecord) Total() uint64 {
	return lo.SumBy(r.Results, func(d UsageDetail) uint64 { return d.Total() })
}

// InputTokens returns the bucket's input tokens
func (r UsageRecord) InputTokens() uint64 {
	return lo.SumBy(r.Results, func(d UsageDetail) uint64 { return d.InputTokens })
}

// OutputTokens returns the bucket's output tokens
func (r UsageRecord) OutputTokens() uint64 {
	return lo.SumBy(r.Results, func(d UsageDetail) uint64 { return d.OutputTokens })
}

// Date returns the YYYY-MM-DD part of StartingAt
func (r UsageRecord) Date() string {
	date, _, _ := strings.Cut(r.StartingAt, "T")
	return date
}

// UsageSummary summarises a set of usage buckets
type UsageSummary struct {
	TotalInputTokens  uint64 `json:"total_input_tokens"`
	TotalOutputTokens uint64 `json:"total_output_tokens"`
	TotalTokens       uint64 `json:"total_tokens"`
	DaysWithUsage     int    `json:"days_with_usage"`
}

// SummarizeRecords builds a summary from usage buckets
func SummarizeRecords(records []UsageRecord) UsageSummary {
	in := lo.SumBy(records, UsageRecord.InputTokens)
	out := lo.SumBy(records, UsageRecord.OutputTokens)
	return UsageSummary{
		TotalInputTokens:  in,
		TotalOutputTokens: out,
		TotalTokens:       in + out,
		DaysWithUsage:     lo.CountBy(records, func(r UsageRecord) bool { return r.Total() > 0 }),
	}
}

// PercentageUsed returns the share of limit consumed, in percent. A zero limit yields 0.
func (s UsageSummary) PercentageUsed(limit uint64) float64 {
	if limit == 0 {
		return 0
	}
	return float64(s.TotalTokens) / float64(limit) * 100
}

// Remaining returns limit minus used tokens; negative means overage.
func (s UsageSummary) Remaining(limit uint64) int64 {
	return int64(limit) - int64(s.TotalTokens)
}
