package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const questionWidth = 90

type pages struct {
	dashboard *template.Template
}

// dashboardView es el modelo de la plantilla.
type dashboardView struct {
	Params domain.FilterParams
	Ran    bool
	Result domain.ScanResult
	Rows   []rowView
	Err    *domain.ErrorDescriptor
}

type rowView struct {
	Rank      int
	Question  string
	URL       string
	Days      int
	Reward    string
	Liquidity string
	Price     string
	Score     string
	BarPct    int // 0-100, relativo al mayor score del ciclo
}

func (h *handlers) loadTemplates() error {
	t, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	h.pages = &pages{dashboard: t}
	return nil
}

// dashboard pinta el formulario y, con run=1, ejecuta el scan y la tabla.
// GET /?min_reward=&max_days=&min_liquidity=&run=1
func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := dashboardView{Params: h.defaults}

	params, err := parseParams(q, h.defaults)
	if err != nil {
		d := domain.Describe(err)
		view.Err = &d
		h.render(w, http.StatusBadRequest, view)
		return
	}
	view.Params = params

	if q.Get("run") != "1" {
		h.render(w, http.StatusOK, view)
		return
	}

	view.Ran = true
	result, err := h.scanner.Scan(r.Context(), params)
	if err != nil {
		h.logger.Warn("scan failed", "params", params.CacheKey(), "err", err)
		d := domain.Describe(err)
		view.Err = &d
		h.render(w, statusFor(err), view)
		return
	}

	view.Result = result
	view.Rows = buildRows(result)
	h.render(w, http.StatusOK, view)
}

func (h *handlers) render(w http.ResponseWriter, status int, view dashboardView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages.dashboard.Execute(w, view); err != nil {
		h.logger.Error("render dashboard", "err", err)
	}
}

func buildRows(result domain.ScanResult) []rowView {
	maxScore := result.MaxScore()
	rows := make([]rowView, 0, len(result.Rows))
	for i, o := range result.Rows {
		rows = append(rows, rowView{
			Rank:      i + 1,
			Question:  domain.TruncateQuestion(o.Question, o.Slug, questionWidth),
			URL:       o.URL,
			Days:      o.DaysRemaining,
			Reward:    o.DisplayReward().StringFixed(2),
			Liquidity: o.DisplayLiquidity().String(),
			Price:     fmt.Sprintf("%.2f", o.LastPrice),
			Score:     o.DisplayScore().StringFixed(2),
			BarPct:    barPct(o.Score, maxScore),
		})
	}
	return rows
}

func barPct(score, maxScore float64) int {
	if maxScore <= 0 || score <= 0 {
		return 0
	}
	pct := int(score / maxScore * 100)
	if pct < 1 {
		pct = 1
	}
	return pct
}
