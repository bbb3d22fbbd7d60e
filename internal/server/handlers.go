package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

const healthTimeout = 2 * time.Second

type handlers struct {
	scanner   Scanner
	cachePing Pinger
	defaults  domain.FilterParams
	logger    *slog.Logger
	pages     *pages
}

// opportunities devuelve el ScanResult en JSON.
// GET /api/opportunities?min_reward=&max_days=&min_liquidity=
func (h *handlers) opportunities(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r.URL.Query(), h.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.Describe(err))
		return
	}

	result, err := h.scanner.Scan(r.Context(), params)
	if err != nil {
		h.logger.Warn("scan failed", "params", params.CacheKey(), "err", err)
		writeError(w, statusFor(err), domain.Describe(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// health responde ok si el proceso está vivo y la caché (si es externa) responde.
// GET /api/health
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.cachePing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.cachePing.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["cache"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["cache"] = "ok"
	}
	writeJSON(w, http.StatusOK, body)
}

// parseParams lee los umbrales de la query. Los ausentes toman el valor de defaults.
func parseParams(q url.Values, defaults domain.FilterParams) (domain.FilterParams, error) {
	p := defaults

	if v := q.Get("min_reward"); v != "" {
		f, err := parseFloatParam("min_reward", v)
		if err != nil {
			return p, err
		}
		p.MinReward = f
	}
	if v := q.Get("max_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: max_days %q is not an integer", domain.ErrInvalidParams, v)
		}
		p.MaxDays = n
	}
	if v := q.Get("min_liquidity"); v != "" {
		f, err := parseFloatParam("min_liquidity", v)
		if err != nil {
			return p, err
		}
		p.MinLiquidity = f
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func parseFloatParam(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidParams, name, v)
	}
	return f, nil
}

// statusFor traduce un error del pipeline a un status HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamHTTP),
		errors.Is(err, domain.ErrUpstreamEmpty),
		errors.Is(err, domain.ErrUpstreamDecode):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON serializa v y lo escribe con el status dado.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":{"kind":"internal","detail":"encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, d domain.ErrorDescriptor) {
	writeJSON(w, status, map[string]domain.ErrorDescriptor{"error": d})
}
