package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Opportunity es un mercado que pasó el filtro, con su score calculado.
// Se crea una vez por ciclo y no se modifica después.
type Opportunity struct {
	Market
	Score float64 `json:"score"` // sin redondear; se usa para ordenar
}

// NewOpportunity calcula el score del mercado y devuelve la fila resultante.
func NewOpportunity(m Market) Opportunity {
	return Opportunity{Market: m, Score: Score(m.DailyReward, m.Liquidity)}
}

// DisplayScore devuelve el score redondeado a 2 decimales (solo para mostrar).
func (o Opportunity) DisplayScore() decimal.Decimal {
	return decimal.NewFromFloat(o.Score).Round(2)
}

// DisplayReward devuelve el reward diario redondeado a 2 decimales.
func (o Opportunity) DisplayReward() decimal.Decimal {
	return decimal.NewFromFloat(o.DailyReward).Round(2)
}

// DisplayLiquidity devuelve la liquidez redondeada a la unidad.
func (o Opportunity) DisplayLiquidity() decimal.Decimal {
	return decimal.NewFromFloat(o.Liquidity).Round(0)
}

// ScanStatus distingue los resultados válidos de un ciclo.
type ScanStatus string

const (
	// StatusOK: hay al menos una oportunidad.
	StatusOK ScanStatus = "ok"
	// StatusNoMatches: Gamma devolvió mercados pero ninguno pasó el filtro.
	StatusNoMatches ScanStatus = "no_matches"
	// StatusEmptyUpstream: Gamma devolvió una lista vacía.
	StatusEmptyUpstream ScanStatus = "empty_upstream"
)

// ScanResult es la salida de un ciclo completo del pipeline.
type ScanResult struct {
	RunID      uuid.UUID     `json:"run_id"`
	Params     FilterParams  `json:"params"`
	Rows       []Opportunity `json:"rows"`
	Fetched    int           `json:"fetched"`    // registros devueltos por Gamma
	Normalized int           `json:"normalized"` // registros con endDate válido
	ScannedAt  time.Time     `json:"scanned_at"`
	Status     ScanStatus    `json:"status"`
}

// MaxScore devuelve el mayor score del resultado, 0 si no hay filas.
func (r ScanResult) MaxScore() float64 {
	best := 0.0
	for _, o := range r.Rows {
		if o.Score > best {
			best = o.Score
		}
	}
	return best
}

// StatusFor devuelve el estado que corresponde a un ciclo según sus conteos.
func StatusFor(fetched, rows int) ScanStatus {
	switch {
	case fetched == 0:
		return StatusEmptyUpstream
	case rows == 0:
		return StatusNoMatches
	default:
		return StatusOK
	}
}
