package ports

import (
	"context"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// Notifier presenta el resultado de un ciclo al usuario.
type Notifier interface {
	// Notify muestra las oportunidades ordenadas por score.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, result domain.ScanResult) error
}

// ErrorNotifier es opcional: un Notifier que además sabe presentar un ciclo fallido.
type ErrorNotifier interface {
	NotifyError(ctx context.Context, err error) error
}
