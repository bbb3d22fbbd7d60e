package domain

import (
	"encoding/json"
	"time"
)

const (
	eventURLBase = "https://polymarket.com/event/"

	// DefaultLastPrice es el precio asumido cuando Gamma no devuelve lastTradePrice.
	DefaultLastPrice = 0.5
)

// RawMarket es un registro de Gamma tal como llega, sin interpretar.
// La conversión a Market la hace el normalizer del scanner.
type RawMarket json.RawMessage

// Market representa un mercado de Gamma ya normalizado.
// Todos los campos numéricos tienen un valor por defecto válido.
type Market struct {
	Question      string    `json:"question"`
	Slug          string    `json:"slug"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"` // puede ser negativo si ya expiró
	DailyReward   float64   `json:"daily_reward"`   // suma de rewards.rates[].asset_amount, >= 0
	Liquidity     float64   `json:"liquidity"`      // >= 0
	LastPrice     float64   `json:"last_price"`
	URL           string    `json:"url"`
}

// EventURL construye el link canónico del evento a partir del slug.
// Sin slug no hay link.
func EventURL(slug string) string {
	if slug == "" {
		return ""
	}
	return eventURLBase + slug
}

// Expired devuelve true si el mercado ya pasó su fecha de resolución.
func (m Market) Expired() bool {
	return m.DaysRemaining < 0
}

// TruncateQuestion devuelve la pregunta del mercado truncada a maxLen caracteres.
// Si la pregunta está vacía usa el slug como fallback.
func TruncateQuestion(question, slug string, maxLen int) string {
	q := question
	if q == "" {
		q = slug
	}
	r := []rune(q)
	if maxLen > 3 && len(r) > maxLen {
		q = string(r[:maxLen-3]) + "..."
	}
	return q
}
