package ports

import (
	"context"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// MarketProvider obtiene los mercados activos desde Gamma.
type MarketProvider interface {
	// FetchActiveMarkets devuelve los registros crudos de mercados activos y no cerrados,
	// ordenados por volumen 24h descendente. Hace una única request, sin reintentos.
	// Los fallos se devuelven como *domain.FetchError.
	FetchActiveMarkets(ctx context.Context) ([]domain.RawMarket, error)
}
