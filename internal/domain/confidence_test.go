package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageConfidence(t *testing.T) {
	tests := []struct {
		name  string
		confs []float64
		want  float64
	}{
		{"negative sentinel excluded", []float64{80, -1, 60}, 0.7},
		{"all negative", []float64{-1, -1}, 0},
		{"empty", nil, 0},
		{"zero kept", []float64{0, 100}, 0.5},
		{"nan skipped", []float64{math.NaN(), 90}, 0.9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, PageConfidence(tc.confs), 1e-9)
		})
	}
}

func TestParseConfidences_DropsNonNumeric(t *testing.T) {
	got := ParseConfidences([]string{"conf", "95.5", " -1 ", "", "abc", "12", "NaN"})
	assert.Equal(t, []float64{95.5, -1, 12}, got)
}

func TestCombinePages(t *testing.T) {
	res := CombinePages([]PageText{
		{Text: "  first page \n", Confidence: 0.9},
		{Text: "", Confidence: 0},
		{Text: "   ", Confidence: 0.3},
		{Text: "third", Confidence: 0.33333},
	})

	// the whitespace-only page still yields an empty segment
	assert.Equal(t, "first page\n\nthird", res.Text)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, 0.3833, res.Confidence)
}

func TestCombinePages_Empty(t *testing.T) {
	assert.Equal(t, OcrResult{Text: "", Confidence: 0, Pages: 0}, CombinePages(nil))
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12346))
	assert.Equal(t, 0.7, Round4(0.7))
}
