package scanner

// cached.go: caché delante del pipeline.
//
// La clave es la tupla (min_reward, max_days, min_liquidity). Dos refrescos
// concurrentes con la misma clave comparten una sola llamada a Gamma
// (singleflight); el resultado se sobreescribe entero, gana el último.
// Los errores nunca se cachean.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
)

// DefaultCacheTTL es la ventana de validez de un resultado.
const DefaultCacheTTL = 5 * time.Minute

// Pipeline es cualquier cosa que produzca un ScanResult a partir de umbrales.
// *Scanner y *Cached lo implementan.
type Pipeline interface {
	Scan(ctx context.Context, params domain.FilterParams) (domain.ScanResult, error)
}

// Cached envuelve un Pipeline con un ports.ResultCache.
type Cached struct {
	next  Pipeline
	cache ports.ResultCache
	ttl   time.Duration
	group singleflight.Group
}

// NewCached crea la caché delante de next. ttl <= 0 usa DefaultCacheTTL.
func NewCached(next Pipeline, cache ports.ResultCache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// Scan devuelve el resultado cacheado si sigue vigente; si no, ejecuta el pipeline.
// Si el backend de caché falla, se degrada a un scan directo.
func (c *Cached) Scan(ctx context.Context, params domain.FilterParams) (domain.ScanResult, error) {
	if err := params.Validate(); err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanner.Cached: %w", err)
	}
	key := params.CacheKey()

	result, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed, scanning directly", "key", key, "err", err)
	} else if ok {
		slog.Debug("cache hit", "key", key, "run_id", result.RunID)
		return result, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// La request que llegó primero no debe cancelar la de las demás.
		scanCtx := context.WithoutCancel(ctx)
		res, err := c.next.Scan(scanCtx, params)
		if err != nil {
			return domain.ScanResult{}, err
		}
		if err := c.cache.Set(scanCtx, key, res, c.ttl); err != nil {
			slog.Warn("cache write failed", "key", key, "err", err)
		}
		return res, nil
	})
	if err != nil {
		return domain.ScanResult{}, err
	}
	if shared {
		slog.Debug("scan shared between concurrent requests", "key", key)
	}
	return v.(domain.ScanResult), nil
}
