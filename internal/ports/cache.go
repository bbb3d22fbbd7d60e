package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// ResultCache guarda resultados de ciclos completos, indexados por FilterParams.CacheKey().
type ResultCache interface {
	// Get devuelve el resultado guardado si existe y no ha expirado.
	Get(ctx context.Context, key string) (domain.ScanResult, bool, error)

	// Set guarda (o sobreescribe) el resultado durante ttl.
	Set(ctx context.Context, key string, result domain.ScanResult, ttl time.Duration) error
}
