// internal/models/recommendation_test.go
package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFactor_Contribution(t *testing.T) {
	tests := []struct {
		name     string
		factor   MatchFactor
		expected float64
	}{
		{name: "in range", factor: MatchFactor{Score: 80, Weight: 0.5}, expected: 40},
		{name: "weight above one", factor: MatchFactor{Score: 60, Weight: 5}, expected: 60},
		{name: "score above hundred", factor: MatchFactor{Score: 400, Weight: 0.5}, expected: 50},
		{name: "negative weight", factor: MatchFactor{Score: 80, Weight: -1}, expected: 0},
		{name: "negative score", factor: MatchFactor{Score: -20, Weight: 0.5}, expected: 0},
		{name: "NaN score", factor: MatchFactor{Score: math.NaN(), Weight: 0.5}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.factor.Contribution(), 1e-9)
		})
	}
}
