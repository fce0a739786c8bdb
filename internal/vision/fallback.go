package vision

import (
	"log/slog"
	"os"
)

// ByteSimilarity is the degraded comparison used when either locator cannot
// be decoded as an image. It reads both files raw:
//   - identical contents score 100
//   - otherwise, the share of equal bytes over the common prefix, in percent
//   - a read failure or an empty common prefix scores 0
func ByteSimilarity(a, b string) float64 {
	bufA, err := os.ReadFile(a)
	if err != nil {
		slog.Debug("Fallback read failed", "locator", a, "error", err)
		return 0
	}
	bufB, err := os.ReadFile(b)
	if err != nil {
		slog.Debug("Fallback read failed", "locator", b, "error", err)
		return 0
	}
	return bytesSimilarity(bufA, bufB)
}

func bytesSimilarity(a, b []byte) float64 {
	if len(a) == len(b) && string(a) == string(b) {
		return 100
	}

	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	same := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return clampFloat(float64(same)/float64(n)*100, 0, 100)
}
