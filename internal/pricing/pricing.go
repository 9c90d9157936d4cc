package pricing

import "github.com/zhaobenny/claude-token-counter/internal/model"

const tokensPerMillion = 1_000_000

// Rates holds USD prices per million tokens for each usage category
type Rates struct {
	InputPerMillion         float64
	OutputPerMillion        float64
	CacheCreationPerMillion float64
	CacheReadPerMillion     float64
}

// DefaultRates are the list prices used for local estimates (Sonnet tier).
var DefaultRates = Rates{
	InputPerMillion:         3.00,
	OutputPerMillion:        15.00,
	CacheCreationPerMillion: 3.75,
	CacheReadPerMillion:     0.30,
}

// Cost calculates the cost of aggregated usage at these rates. The result is not rounded.
func (r Rates) Cost(usage model.AggregatedUsage) float64 {
	cost := float64(usage.TotalInput) / tokensPerMillion * r.InputPerMillion
	cost += float64(usage.TotalOutput) / tokensPerMillion * r.OutputPerMillion
	cost += float64(usage.TotalCacheCreation) / tokensPerMillion * r.CacheCreationPerMillion
	cost += float64(usage.TotalCacheRead) / tokensPerMillion * r.CacheReadPerMillion
	return cost
}

// EstimateCost estimates the USD cost of aggregated usage at DefaultRates
func EstimateCost(usage model.AggregatedUsage) float64 {
	return DefaultRates.Cost(usage)
}
