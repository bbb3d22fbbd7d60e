package domain

import (
	"errors"
	"fmt"
)

// Tipos de fallo al obtener mercados de Gamma. Cada uno aborta el ciclo.
var (
	ErrUpstreamHTTP   = errors.New("upstream http error")
	ErrUpstreamEmpty  = errors.New("upstream returned no market list")
	ErrUpstreamDecode = errors.New("upstream response could not be decoded")
	ErrNetwork        = errors.New("network error")
)

// ErrRecordParse marca un registro individual que no se pudo normalizar.
// Nunca sale del normalizer: el registro se excluye y el ciclo sigue.
var ErrRecordParse = errors.New("record parse error")

// FetchError describe un fallo al obtener mercados de Gamma.
// errors.Is funciona tanto con el tipo (Kind) como con la causa (Err).
type FetchError struct {
	Kind       error
	StatusCode int    // solo para ErrUpstreamHTTP
	Snippet    string // inicio del body, para diagnóstico
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorDescriptor es la versión presentable de un error del pipeline.
type ErrorDescriptor struct {
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

// Describe convierte un error del pipeline en un ErrorDescriptor.
func Describe(err error) ErrorDescriptor {
	d := ErrorDescriptor{Kind: "internal", Detail: err.Error()}

	var fe *FetchError
	if errors.As(err, &fe) {
		d.StatusCode = fe.StatusCode
		d.Snippet = fe.Snippet
	}

	switch {
	case errors.Is(err, ErrUpstreamHTTP):
		d.Kind = "upstream_http"
	case errors.Is(err, ErrUpstreamEmpty):
		d.Kind = "upstream_empty"
	case errors.Is(err, ErrUpstreamDecode):
		d.Kind = "upstream_decode"
	case errors.Is(err, ErrNetwork):
		d.Kind = "network"
	case errors.Is(err, ErrInvalidParams):
		d.Kind = "invalid_params"
	}
	return d
}
