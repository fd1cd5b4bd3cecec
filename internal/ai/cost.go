package ai

// Pricing per 1K tokens ($3 per million input, $15 per million output)
const (
	inputCostPer1K  = 0.003
	outputCostPer1K = 0.015
)

// CalculateCost returns the dollar cost of a completion
func CalculateCost(inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) / 1000 * inputCostPer1K
	outputCost := float64(outputTokens) / 1000 * outputCostPer1K
	return inputCost + outputCost
}
