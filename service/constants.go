package service

const (
	// ServingThreshold decides approval at request time. It is independent of
	// the threshold stored in the artifact.
	ServingThreshold = 0.5

	MaxLoanAmount   = 1_000_000_000_000.0
	MaxInterestRate = 100.0
	MaxTermMonths   = 600
	MinTermMonths   = 1

	InsightErrorPrefix = "Error fetching Gemini insight: "
	NoInsightText      = "No insight returned."

	insightCachePrefix = "insight:"

	// advisor replies are kept short
	advisorMaxOutputTokens = 200
)
