package scanner_test

import (
	"testing"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/scanner"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Passes(t *testing.T) {
	f := scanner.NewFilter(domain.FilterParams{MinReward: 30, MaxDays: 7, MinLiquidity: 1000})

	tests := []struct {
		name string
		m    domain.Market
		want bool
	}{
		{"all thresholds met", domain.Market{DaysRemaining: 5, DailyReward: 40, Liquidity: 2000}, true},
		{"exact bounds", domain.Market{DaysRemaining: 7, DailyReward: 30, Liquidity: 1000}, true},
		{"resolves today", domain.Market{DaysRemaining: 0, DailyReward: 30, Liquidity: 1000}, true},
		{"expired", domain.Market{DaysRemaining: -1, DailyReward: 100, Liquidity: 5000}, false},
		{"too far", domain.Market{DaysRemaining: 8, DailyReward: 100, Liquidity: 5000}, false},
		{"low reward", domain.Market{DaysRemaining: 3, DailyReward: 29.99, Liquidity: 5000}, false},
		{"low liquidity", domain.Market{DaysRemaining: 3, DailyReward: 100, Liquidity: 999.99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Passes(tt.m))
		})
	}
}

func TestFilter_ZeroLiquidityThresholdKeepsEverything(t *testing.T) {
	f := scanner.NewFilter(domain.FilterParams{MaxDays: 30})
	assert.True(t, f.Passes(domain.Market{DaysRemaining: 1}))
}

func TestFilter_ApplyKeepsOrder(t *testing.T) {
	f := scanner.NewFilter(scanner.DefaultFilterParams())
	in := []domain.Market{
		{Slug: "a", DaysRemaining: 3},
		{Slug: "b", DaysRemaining: 45},
		{Slug: "c", DaysRemaining: 10},
		{Slug: "d", DaysRemaining: -2},
		{Slug: "e", DaysRemaining: 30},
	}

	out := f.Apply(in)
	got := make([]string, len(out))
	for i, m := range out {
		got[i] = m.Slug
	}
	assert.Equal(t, []string{"a", "c", "e"}, got)
}

func TestFilter_ApplyEmpty(t *testing.T) {
	out := scanner.NewFilter(scanner.DefaultFilterParams()).Apply(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestScoreAll(t *testing.T) {
	opps := scanner.ScoreAll([]domain.Market{
		{Slug: "x", DailyReward: 40, Liquidity: 2000},
		{Slug: "y", DailyReward: 0, Liquidity: 0},
		{Slug: "z", DailyReward: 5, Liquidity: 0},
	})

	assert.Len(t, opps, 3)
	assert.InDelta(t, 19.990005, opps[0].Score, 1e-6)
	assert.Equal(t, 0.0, opps[1].Score)
	assert.Equal(t, 5000.0, opps[2].Score)
	assert.Equal(t, "x", opps[0].Slug)
}
