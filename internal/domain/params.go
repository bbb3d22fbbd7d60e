package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// FilterParams son los tres umbrales que elige el usuario.
type FilterParams struct {
	MinReward    float64 `json:"min_reward"`    // USDC/día mínimo
	MaxDays      int     `json:"max_days"`      // días máximos hasta la resolución
	MinLiquidity float64 `json:"min_liquidity"` // 0 = sin filtro de liquidez
}

// ErrInvalidParams indica umbrales fuera de rango.
var ErrInvalidParams = errors.New("invalid filter parameters")

// Validate comprueba que los umbrales no sean negativos.
func (p FilterParams) Validate() error {
	if p.MinReward < 0 {
		return fmt.Errorf("%w: min_reward must be >= 0, got %v", ErrInvalidParams, p.MinReward)
	}
	if p.MaxDays < 0 {
		return fmt.Errorf("%w: max_days must be >= 0, got %d", ErrInvalidParams, p.MaxDays)
	}
	if p.MinLiquidity < 0 {
		return fmt.Errorf("%w: min_liquidity must be >= 0, got %v", ErrInvalidParams, p.MinLiquidity)
	}
	return nil
}

// CacheKey devuelve la clave de caché para esta combinación de umbrales.
// Dos FilterParams iguales producen siempre la misma clave.
func (p FilterParams) CacheKey() string {
	return strconv.FormatFloat(p.MinReward, 'g', -1, 64) + "|" +
		strconv.Itoa(p.MaxDays) + "|" +
		strconv.FormatFloat(p.MinLiquidity, 'g', -1, 64)
}
