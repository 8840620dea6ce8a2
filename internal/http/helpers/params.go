package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/userdash/internal/http/errors"
)

// PathInt lee un parámetro entero positivo de la ruta chi.
func PathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, httperrors.ErrInvalidParameter.WithDetail(name + " must be a positive integer")
	}
	return n, nil
}

// QueryInt lee un entero de la query; ausente devuelve def.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperrors.ErrInvalidParameter.WithDetail(name + " must be an integer")
	}
	return n, nil
}
