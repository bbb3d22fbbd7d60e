package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
	"github.com/olekukonko/tablewriter"
)

const (
	questionWidth = 50
	barWidth      = 12
)

// Console implementa ports.Notifier escribiendo una tabla en texto.
type Console struct {
	out   io.Writer
	limit int // 0 = todas las filas
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(limit int) *Console {
	return &Console{out: os.Stdout, limit: limit}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime el resultado del ciclo. Lista vacía de Gamma y cero
// coincidencias son mensajes distintos; ninguno es un error.
func (c *Console) Notify(_ context.Context, result domain.ScanResult) error {
	ts := result.ScannedAt.Local().Format("15:04:05")

	switch result.Status {
	case domain.StatusEmptyUpstream:
		fmt.Fprintf(c.out, "[%s] Gamma returned an empty market list. Try again in a few minutes.\n", ts)
		return nil
	case domain.StatusNoMatches:
		fmt.Fprintf(c.out, "[%s] No opportunities found among %d markets (min_reward=%v max_days=%d min_liquidity=%v).\n",
			ts, result.Fetched, result.Params.MinReward, result.Params.MaxDays, result.Params.MinLiquidity)
		fmt.Fprintln(c.out, "  Try lowering min_reward or min_liquidity, or raising max_days.")
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d opportunities from %d markets (run %s)\n",
		ts, len(result.Rows), result.Fetched, shortID(result))
	return c.printTable(result)
}

// NotifyError imprime un fallo del pipeline con el detalle necesario para diagnosticarlo.
func (c *Console) NotifyError(_ context.Context, err error) error {
	d := domain.Describe(err)
	fmt.Fprintf(c.out, "Could not retrieve markets [%s]: %s\n", d.Kind, d.Detail)
	if d.StatusCode != 0 {
		fmt.Fprintf(c.out, "  status: %d\n", d.StatusCode)
	}
	if d.Snippet != "" {
		fmt.Fprintf(c.out, "  body:   %s\n", d.Snippet)
	}
	return nil
}

func (c *Console) printTable(result domain.ScanResult) error {
	rows := result.Rows
	if c.limit > 0 && len(rows) > c.limit {
		rows = rows[:c.limit]
	}
	maxScore := result.MaxScore()

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Days", "Reward/day", "Liquidity", "Price", "Score", "", "Link")

	for i, o := range rows {
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			domain.TruncateQuestion(o.Question, o.Slug, questionWidth),
			fmt.Sprintf("%d", o.DaysRemaining),
			"$"+o.DisplayReward().StringFixed(2),
			"$"+o.DisplayLiquidity().String(),
			fmt.Sprintf("%.2f", o.LastPrice),
			o.DisplayScore().StringFixed(2),
			scoreBar(o.Score, maxScore, barWidth),
			o.URL,
		); err != nil {
			return fmt.Errorf("notify.Console: append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.Console: render: %w", err)
	}
	if len(rows) < len(result.Rows) {
		fmt.Fprintf(c.out, "  ... %d more\n", len(result.Rows)-len(rows))
	}
	fmt.Fprintln(c.out, "  Score = reward/day / (liquidity + 1) x 1000. Higher = less competition per dollar of reward.")
	return nil
}

// scoreBar dibuja el score proporcional al máximo del ciclo.
func scoreBar(score, maxScore float64, width int) string {
	if maxScore <= 0 || score <= 0 {
		return ""
	}
	n := int(score / maxScore * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func shortID(result domain.ScanResult) string {
	return result.RunID.String()[:8]
}

var (
	_ ports.Notifier      = (*Console)(nil)
	_ ports.ErrorNotifier = (*Console)(nil)
)
