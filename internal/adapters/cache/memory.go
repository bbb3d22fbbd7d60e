// Package cache implementa ports.ResultCache en memoria y sobre Redis.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
)

// Memory es una caché de proceso con expiración por entrada.
// Un hit no renueva el TTL: el resultado caduca a los ttl de haberse calculado.
// Las entradas vencidas se purgan en el siguiente Set.
type Memory struct {
	items *ttlcache.Cache[string, domain.ScanResult]
}

// NewMemory crea una caché vacía.
func NewMemory() *Memory {
	return &Memory{
		items: ttlcache.New[string, domain.ScanResult](
			ttlcache.WithDisableTouchOnHit[string, domain.ScanResult](),
		),
	}
}

func (m *Memory) Get(_ context.Context, key string) (domain.ScanResult, bool, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return domain.ScanResult{}, false, nil
	}
	return item.Value(), true, nil
}

func (m *Memory) Set(_ context.Context, key string, result domain.ScanResult, ttl time.Duration) error {
	m.items.DeleteExpired()
	m.items.Set(key, result, ttl)
	return nil
}

// Len devuelve el número de entradas en caché.
func (m *Memory) Len() int {
	return m.items.Len()
}

var _ ports.ResultCache = (*Memory)(nil)
