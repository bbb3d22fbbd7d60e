package domain

import (
	"math"
	"time"
)

// scoreScale lleva el ratio reward/liquidez a una escala legible.
const scoreScale = 1000

// Score calcula el score de competitividad de un mercado.
//
// Fórmula: S = (dailyReward / (liquidity + 1)) × 1000
//
// El +1 evita la división por cero cuando la liquidez es 0. Se aplica siempre,
// también cuando el filtro ya garantiza un mínimo de liquidez, para que el score
// de un mercado no dependa de los parámetros de filtrado.
// A liquidez baja NO es equivalente a dailyReward/liquidity.
// Entradas no finitas o un resultado que desborda devuelven 0.
func Score(dailyReward, liquidity float64) float64 {
	if dailyReward <= 0 || math.IsInf(dailyReward, 0) || math.IsNaN(dailyReward) {
		return 0
	}
	if liquidity < 0 || math.IsNaN(liquidity) {
		liquidity = 0
	}
	s := dailyReward / (liquidity + 1) * scoreScale
	if math.IsInf(s, 0) || math.IsNaN(s) {
		return 0
	}
	return s
}

// DaysUntil devuelve los días completos entre now y end, redondeando hacia abajo.
// Un mercado que expiró hace 1 hora devuelve -1, no 0.
func DaysUntil(end, now time.Time) int {
	d := end.Sub(now)
	return int(math.Floor(d.Hours() / 24))
}
