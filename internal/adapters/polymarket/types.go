package polymarket

import "encoding/json"

// DTOs raw de la Gamma API. Solo se usan dentro de este paquete.
// Los registros individuales se devuelven sin interpretar; la normalización
// campo a campo la hace el scanner.

// gammaEnvelope es la forma alternativa de GET /markets: {"data": [...]}.
// Data queda en crudo para distinguir ausencia, null y tipo incorrecto.
type gammaEnvelope struct {
	Data json.RawMessage `json:"data"`
}
