package scanner

import (
	"sort"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// ScoreAll calcula el score de cada mercado que pasó el filtro.
func ScoreAll(markets []domain.Market) []domain.Opportunity {
	opps := make([]domain.Opportunity, 0, len(markets))
	for _, m := range markets {
		opps = append(opps, domain.NewOpportunity(m))
	}
	return opps
}

// rankByScore ordena por Score descendente sin redondear.
// Sort estable: en empate se conserva el orden de Gamma (volumen 24h).
func rankByScore(opps []domain.Opportunity) []domain.Opportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Score > opps[j].Score
	})
	return opps
}
