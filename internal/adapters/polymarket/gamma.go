package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

const (
	gammaMarketsPath  = "/markets"
	gammaDefaultLimit = 500
	gammaMaxLimit     = 1000
	gammaOrderField   = "volume24hr"
)

// FetchActiveMarkets devuelve los mercados activos y no cerrados de Gamma,
// ordenados por volumen 24h descendente, sin interpretar.
// Una lista vacía es un resultado válido, distinto de un fallo.
func (c *Client) FetchActiveMarkets(ctx context.Context) ([]domain.RawMarket, error) {
	params := url.Values{}
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("order", gammaOrderField)
	params.Set("ascending", "false")

	body, err := c.get(ctx, c.gammaBase+gammaMarketsPath+"?"+params.Encode())
	if err != nil {
		slog.Debug("gamma request failed", "err", err, "timeout", IsTimeout(err))
		return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
	}

	markets, err := decodeMarkets(body)
	if err != nil {
		return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
	}

	slog.Debug("gamma markets fetched", "count", len(markets), "limit", c.limit)
	return markets, nil
}

// decodeMarkets acepta los dos formatos que devuelve Gamma:
// un array de mercados, o un objeto con el array bajo "data".
func decodeMarkets(body []byte) ([]domain.RawMarket, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &domain.FetchError{Kind: domain.ErrUpstreamEmpty, Snippet: snippet(body)}
	}

	var list []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, decodeError(body, err)
		}
	case '{':
		var env gammaEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, decodeError(body, err)
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, &domain.FetchError{Kind: domain.ErrUpstreamEmpty, Snippet: snippet(body)}
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, decodeError(body, fmt.Errorf("field data: %w", err))
		}
	default:
		// JSON válido pero con otra forma (string, número, bool) o directamente no-JSON
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, decodeError(body, err)
		}
		return nil, decodeError(body, fmt.Errorf("unexpected top-level %T", v))
	}

	markets := make([]domain.RawMarket, len(list))
	for i, raw := range list {
		markets[i] = domain.RawMarket(raw)
	}
	return markets, nil
}

func decodeError(body []byte, err error) error {
	return &domain.FetchError{Kind: domain.ErrUpstreamDecode, Snippet: snippet(body), Err: err}
}
