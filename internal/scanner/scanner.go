package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration // solo para Run (modo watch en consola)
	Params       domain.FilterParams
	DryRun       bool // un solo ciclo y salir
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval: 5 * time.Minute,
		Params:       DefaultFilterParams(),
	}
}

// Scanner ejecuta el pipeline fetch → normalize → filter → score → rank.
// No guarda estado entre ciclos.
type Scanner struct {
	cfg      Config
	markets  ports.MarketProvider
	notifier ports.Notifier
	now      func() time.Time
}

// New crea un Scanner con todas las dependencias inyectadas.
// notifier solo se usa en Run y puede ser nil si el Scanner sirve al dashboard.
func New(cfg Config, markets ports.MarketProvider, notifier ports.Notifier) *Scanner {
	return &Scanner{
		cfg:      cfg,
		markets:  markets,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj del Scanner (tests).
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Scan ejecuta un ciclo completo con los umbrales dados.
// Los fallos de Gamma abortan el ciclo y se devuelven como *domain.FetchError;
// una lista vacía o sin coincidencias NO es un error (ver ScanResult.Status).
func (s *Scanner) Scan(ctx context.Context, params domain.FilterParams) (domain.ScanResult, error) {
	if err := params.Validate(); err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanner.Scan: %w", err)
	}

	start := s.now()
	raws, err := s.markets.FetchActiveMarkets(ctx)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("scanner.Scan: fetch markets: %w", err)
	}

	now := s.now().UTC()
	markets := NormalizeAll(raws, now)
	filtered := NewFilter(params).Apply(markets)
	ranked := rankByScore(ScoreAll(filtered))

	result := domain.ScanResult{
		RunID:      uuid.New(),
		Params:     params,
		Rows:       ranked,
		Fetched:    len(raws),
		Normalized: len(markets),
		ScannedAt:  now,
		Status:     domain.StatusFor(len(raws), len(ranked)),
	}

	slog.Info("scan complete",
		"run_id", result.RunID,
		"fetched", result.Fetched,
		"normalized", result.Normalized,
		"opportunities", len(result.Rows),
		"status", result.Status,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)
	return result, nil
}

// Run ejecuta el ciclo con cfg.Params y notifica el resultado hasta que el
// contexto se cancele. Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"dry_run", s.cfg.DryRun,
		"min_reward", s.cfg.Params.MinReward,
		"max_days", s.cfg.Params.MaxDays,
		"min_liquidity", s.cfg.Params.MinLiquidity,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// runCycle ejecuta un ciclo y lo notifica, también cuando falla.
func (s *Scanner) runCycle(ctx context.Context) error {
	result, err := s.Scan(ctx, s.cfg.Params)
	if err != nil {
		if en, ok := s.notifier.(ports.ErrorNotifier); ok {
			if nerr := en.NotifyError(ctx, err); nerr != nil {
				slog.Warn("notifier error", "err", nerr)
			}
		}
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return nil
}
