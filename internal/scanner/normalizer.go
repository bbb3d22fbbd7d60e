package scanner

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// gammaRecord son los campos de un mercado de Gamma que consume el pipeline.
// Todos quedan en crudo: Gamma mezcla números, strings numéricos y null,
// y un campo con tipo inesperado no debe tumbar el registro entero.
type gammaRecord struct {
	Question       json.RawMessage `json:"question"`
	Slug           json.RawMessage `json:"slug"`
	EndDate        json.RawMessage `json:"endDate"`
	Rewards        json.RawMessage `json:"rewards"`
	Liquidity      json.RawMessage `json:"liquidity"`
	LastTradePrice json.RawMessage `json:"lastTradePrice"`
}

type gammaRewards struct {
	Rates json.RawMessage `json:"rates"`
}

type gammaRate struct {
	AssetAmount json.RawMessage `json:"asset_amount"`
}

// Gamma devuelve endDate con offset explícito ("Z" o "+00:00"), con o sin fracción.
// Fechas sin zona horaria se descartan: no se pueden comparar con now en UTC.
var endDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Normalize convierte un registro crudo de Gamma en un domain.Market.
// Devuelve un error envuelto en domain.ErrRecordParse si el registro no tiene
// un endDate utilizable; el resto de campos toman su valor por defecto.
func Normalize(raw domain.RawMarket, now time.Time) (domain.Market, error) {
	var rec gammaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Market{}, fmt.Errorf("%w: not an object: %v", domain.ErrRecordParse, err)
	}

	endStr, ok := rawString(rec.EndDate)
	if !ok || endStr == "" {
		return domain.Market{}, fmt.Errorf("%w: missing endDate", domain.ErrRecordParse)
	}
	end, err := parseEndDate(endStr)
	if err != nil {
		return domain.Market{}, fmt.Errorf("%w: endDate %q: %v", domain.ErrRecordParse, endStr, err)
	}

	question, _ := rawString(rec.Question)
	slug, _ := rawString(rec.Slug)

	liquidity, ok := rawFloat(rec.Liquidity)
	if !ok || liquidity < 0 {
		liquidity = 0
	}

	price, ok := rawFloat(rec.LastTradePrice)
	if !ok {
		price = domain.DefaultLastPrice
	}

	return domain.Market{
		Question:      question,
		Slug:          slug,
		EndDate:       end,
		DaysRemaining: domain.DaysUntil(end, now),
		DailyReward:   sumRewardRates(rec.Rewards),
		Liquidity:     liquidity,
		LastPrice:     price,
		URL:           domain.EventURL(slug),
	}, nil
}

// NormalizeAll normaliza un batch. Los registros inválidos se excluyen y se
// loguean en debug; ningún registro individual hace fallar el batch.
func NormalizeAll(raws []domain.RawMarket, now time.Time) []domain.Market {
	markets := make([]domain.Market, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		m, err := Normalize(raw, now)
		if err != nil {
			skipped++
			slog.Debug("market record skipped", "index", i, "err", err)
			continue
		}
		markets = append(markets, m)
	}

	if skipped > 0 {
		slog.Debug("normalization complete", "records", len(raws), "skipped", skipped)
	}
	return markets
}

// parseEndDate parsea un timestamp ISO-8601 con zona horaria y lo pasa a UTC.
func parseEndDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	var lastErr error
	for _, layout := range endDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// sumRewardRates suma rewards.rates[].asset_amount.
// Si rewards no es un objeto o rates no es un array devuelve 0;
// una entrada malformada, negativa o no finita aporta 0. Si la suma desborda,
// el campo se trata como malformado y vale 0.
func sumRewardRates(raw json.RawMessage) float64 {
	if !isJSONObject(raw) {
		return 0
	}
	var rw gammaRewards
	if err := json.Unmarshal(raw, &rw); err != nil {
		return 0
	}

	var rates []json.RawMessage
	if err := json.Unmarshal(rw.Rates, &rates); err != nil {
		return 0
	}

	total := 0.0
	for _, r := range rates {
		if !isJSONObject(r) {
			continue
		}
		var rate gammaRate
		if err := json.Unmarshal(r, &rate); err != nil {
			continue
		}
		if amt, ok := rawFloat(rate.AssetAmount); ok && amt > 0 {
			total += amt
		}
	}
	if math.IsInf(total, 0) {
		return 0
	}
	return total
}

// rawString devuelve el valor si el JSON es un string.
func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// rawFloat acepta un número JSON o un string numérico ("15230.55").
// null, ausente, no numérico, NaN o Inf devuelven false.
func rawFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		s, ok := rawString(raw)
		if !ok {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	} else if string(raw) == "null" {
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
