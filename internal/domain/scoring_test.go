package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_SmoothedFormula(t *testing.T) {
	// 40 / (2000 + 1) × 1000 = 19.99000...
	score := Score(40, 2000)
	assert.InDelta(t, 19.990005, score, 1e-6)
	assert.NotEqual(t, 20.0, score, "el +1 se aplica aunque haya liquidez")
}

func TestScore_ZeroLiquidity(t *testing.T) {
	// Sin liquidez el denominador es 1, nunca 0
	score := Score(50, 0)
	assert.InDelta(t, 50000.0, score, 1e-9)
	assert.False(t, math.IsInf(score, 0))
}

func TestScore_NoReward(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 1000))
	assert.Equal(t, 0.0, Score(-5, 1000))
}

func TestScore_NegativeLiquidityClamped(t *testing.T) {
	assert.InDelta(t, Score(10, 0), Score(10, -500), 1e-9)
}

func TestScore_OverflowIsZero(t *testing.T) {
	// 1e306 / 1 × 1000 desborda a +Inf
	assert.Equal(t, 0.0, Score(1e306, 0))
	assert.Equal(t, 0.0, Score(math.Inf(1), 100))
	assert.Equal(t, 0.0, Score(math.NaN(), 100))
	assert.Equal(t, 0.0, Score(10, math.Inf(1)))
}

// --- DaysUntil ---

func TestDaysUntil_WholeDays(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, DaysUntil(now.Add(5*24*time.Hour), now))
	assert.Equal(t, 5, DaysUntil(now.Add(5*24*time.Hour+23*time.Hour), now))
	assert.Equal(t, 0, DaysUntil(now.Add(time.Hour), now))
}

func TestDaysUntil_PastFloorsDown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// Expiró hace 1h → -1, no 0
	assert.Equal(t, -1, DaysUntil(now.Add(-time.Hour), now))
	assert.Equal(t, -2, DaysUntil(now.Add(-25*time.Hour), now))
}

// --- Opportunity ---

func TestNewOpportunity_DisplayRounding(t *testing.T) {
	opp := NewOpportunity(Market{DailyReward: 40.456, Liquidity: 2000.6})
	assert.Equal(t, "40.46", opp.DisplayReward().String())
	assert.Equal(t, "2001", opp.DisplayLiquidity().String())
	assert.Equal(t, "20.21", opp.DisplayScore().String())
	// El score interno no se redondea
	assert.NotEqual(t, 20.21, opp.Score)
}

func TestScanResult_MaxScore(t *testing.T) {
	r := ScanResult{Rows: []Opportunity{{Score: 3}, {Score: 9.5}, {Score: 1}}}
	assert.Equal(t, 9.5, r.MaxScore())
	assert.Equal(t, 0.0, ScanResult{}.MaxScore())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusEmptyUpstream, StatusFor(0, 0))
	assert.Equal(t, StatusNoMatches, StatusFor(10, 0))
	assert.Equal(t, StatusOK, StatusFor(10, 2))
}

// --- FilterParams ---

func TestFilterParams_Validate(t *testing.T) {
	assert.NoError(t, FilterParams{MinReward: 0, MaxDays: 30}.Validate())
	assert.ErrorIs(t, FilterParams{MinReward: -1}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, FilterParams{MaxDays: -1}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, FilterParams{MinLiquidity: -0.5}.Validate(), ErrInvalidParams)
}

func TestFilterParams_CacheKey(t *testing.T) {
	a := FilterParams{MinReward: 10, MaxDays: 30, MinLiquidity: 500}
	b := FilterParams{MinReward: 10, MaxDays: 30, MinLiquidity: 500}
	c := FilterParams{MinReward: 10, MaxDays: 31, MinLiquidity: 500}
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

// --- errores ---

func TestFetchError_IsKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("scanner.Scan: %w", &FetchError{Kind: ErrNetwork, Err: cause})

	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUpstreamHTTP)
}

func TestDescribe_UpstreamHTTP(t *testing.T) {
	err := &FetchError{Kind: ErrUpstreamHTTP, StatusCode: 403, Snippet: "forbidden"}
	d := Describe(err)

	assert.Equal(t, "upstream_http", d.Kind)
	assert.Equal(t, 403, d.StatusCode)
	assert.Equal(t, "forbidden", d.Snippet)
	assert.Contains(t, d.Detail, "403")
}

func TestDescribe_Unknown(t *testing.T) {
	d := Describe(errors.New("boom"))
	require.Equal(t, "internal", d.Kind)
	assert.Equal(t, "boom", d.Detail)
}

func TestEventURL(t *testing.T) {
	assert.Equal(t, "https://polymarket.com/event/will-x-happen", EventURL("will-x-happen"))
	assert.Equal(t, "", EventURL(""))
}
