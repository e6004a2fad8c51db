package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeatLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected HeatLevel
	}{
		{name: "zero", score: 0, expected: HeatLow},
		{name: "exactly 3 stays low", score: 3, expected: HeatLow},
		{name: "just above 3", score: 3.01, expected: HeatMedium},
		{name: "exactly 5 stays medium", score: 5, expected: HeatMedium},
		{name: "just above 5", score: 5.5, expected: HeatHigh},
		{name: "exactly 8 stays high", score: 8, expected: HeatHigh},
		{name: "above 8", score: 8.2, expected: HeatHighest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HeatLevelFor(tt.score))
		})
	}
}

func TestNarratives(t *testing.T) {
	assert.Len(t, Narratives, 12)
	assert.Equal(t, "Meme", Narratives[0])
	assert.Equal(t, "SocialFi", Narratives[len(Narratives)-1])
}
