package polymarket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

const (
	defaultGammaBase = "https://gamma-api.polymarket.com"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	siteOrigin       = "https://polymarket.com"

	// Gamma /markets: 300/10s documentado. Un refresh por request de usuario
	// queda muy por debajo; el limiter solo protege de refrescos en ráfaga.
	defaultRatePerSec = 2
	rateBurst         = 2

	// maxBodyBytes acota lo que leemos de Gamma (1000 mercados ≈ 5MB).
	maxBodyBytes = 32 << 20
	snippetLen   = 200
)

// Options configura el Client. Los campos vacíos usan los valores de producción.
type Options struct {
	GammaBase  string
	Timeout    time.Duration
	UserAgent  string
	RatePerSec float64
	Limit      int // tamaño de página pedido a /markets (1..1000)
}

// Client es el HTTP client de la Gamma API de Polymarket.
// Hace una única request por llamada: sin reintentos ni backoff.
type Client struct {
	http         *http.Client
	gammaBase    string
	userAgent    string
	limit        int
	gammaLimiter *rate.Limiter
}

// NewClient crea un Client con las opciones dadas.
func NewClient(opts Options) *Client {
	if opts.GammaBase == "" {
		opts.GammaBase = defaultGammaBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = defaultRatePerSec
	}
	return &Client{
		http:         &http.Client{Timeout: opts.Timeout},
		gammaBase:    opts.GammaBase,
		userAgent:    opts.UserAgent,
		limit:        clampLimit(opts.Limit),
		gammaLimiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), rateBurst),
	}
}

// get hace un GET con rate limiting y devuelve el body si el status es 200.
// Cada modo de fallo se devuelve como un *domain.FetchError distinto.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.gammaLimiter.Wait(ctx); err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrNetwork, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setBrowserHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrNetwork, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{
			Kind:       domain.ErrUpstreamHTTP,
			StatusCode: resp.StatusCode,
			Snippet:    snippet(body),
		}
	}
	return body, nil
}

// setBrowserHeaders imita las cabeceras de un navegador. Gamma rechaza a veces
// clientes sin User-Agent/Referer desde IPs de cloud; no hay garantía de que baste.
func (c *Client) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", siteOrigin+"/")
	req.Header.Set("Origin", siteOrigin)
}

// snippet devuelve los primeros snippetLen bytes del body para diagnóstico.
func snippet(body []byte) string {
	if len(body) > snippetLen {
		body = body[:snippetLen]
	}
	return string(body)
}

// clampLimit acota el tamaño de página al rango que acepta Gamma.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return gammaDefaultLimit
	case limit > gammaMaxLimit:
		return gammaMaxLimit
	default:
		return limit
	}
}

// IsTimeout devuelve true si el error es un timeout del client HTTP.
func IsTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
