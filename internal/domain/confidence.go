package domain

import (
	"math"
	"strconv"
	"strings"
)

// PageConfidence averages the non-negative token confidences of one page
// and scales the result from 0..100 into 0..1. Negative values are the
// engine's marker for non-text regions and are skipped, as are NaNs.
// It returns 0 when nothing remains.
func PageConfidence(confs []float64) float64 {
	var sum float64
	n := 0
	for _, c := range confs {
		if math.IsNaN(c) || c < 0 {
			continue
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / (float64(n) * 100.0)
}

// ParseConfidences converts raw engine confidence cells to numbers,
// silently dropping cells that are not numeric.
func ParseConfidences(raw []string) []float64 {
	out := make([]float64, 0, len(raw))
	for _, cell := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// PageText is the recognition output of a single page.
type PageText struct {
	Text       string
	Confidence float64
}

// CombinePages builds the document result from per-page output. Pages whose
// text is exactly empty contribute no segment; the others are trimmed and
// joined with newlines. The confidence is the mean of page confidences,
// rounded to 4 decimals.
func CombinePages(pages []PageText) OcrResult {
	if len(pages) == 0 {
		return OcrResult{}
	}

	segments := make([]string, 0, len(pages))
	var confSum float64
	for _, p := range pages {
		if p.Text != "" {
			segments = append(segments, strings.TrimSpace(p.Text))
		}
		confSum += p.Confidence
	}

	return OcrResult{
		Text:       strings.TrimSpace(strings.Join(segments, "\n")),
		Confidence: Round4(confSum / float64(len(pages))),
		Pages:      len(pages),
	}
}

// Round4 rounds v to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
