package scanner

import (
	"github.com/alejandrodnm/polyscan/internal/domain"
)

// DefaultFilterParams devuelve los umbrales por defecto del dashboard.
func DefaultFilterParams() domain.FilterParams {
	return domain.FilterParams{
		MinReward:    0,
		MaxDays:      30,
		MinLiquidity: 0,
	}
}

// Filter aplica los umbrales sobre mercados ya normalizados.
type Filter struct {
	params domain.FilterParams
}

// NewFilter crea un Filter con los umbrales dados.
func NewFilter(params domain.FilterParams) *Filter {
	return &Filter{params: params}
}

// Apply devuelve los mercados que pasan todos los filtros, en el mismo orden.
func (f *Filter) Apply(markets []domain.Market) []domain.Market {
	result := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if f.Passes(m) {
			result = append(result, m)
		}
	}
	return result
}

// Passes devuelve true si el mercado supera todos los criterios.
// Los criterios son independientes: el orden de evaluación no cambia el resultado.
func (f *Filter) Passes(m domain.Market) bool {
	// Ya expirado o demasiado lejos
	if m.DaysRemaining < 0 || m.DaysRemaining > f.params.MaxDays {
		return false
	}
	if m.DailyReward < f.params.MinReward {
		return false
	}
	// Con MinLiquidity = 0 no descarta nada (liquidez siempre >= 0)
	if m.Liquidity < f.params.MinLiquidity {
		return false
	}
	return true
}
