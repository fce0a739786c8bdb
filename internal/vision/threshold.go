package vision

// Evaluate turns a score into a verdict. With no threshold it returns the
// empty Status, which serializes as an absent field. Otherwise the score is
// truncated toward zero before comparing, so 89.99 fails a threshold of 90.
func Evaluate(score float64, minSimilarity *int) Status {
	if minSimilarity == nil {
		return ""
	}
	if int(score) >= *minSimilarity {
		return StatusPassed
	}
	return StatusFailed
}
