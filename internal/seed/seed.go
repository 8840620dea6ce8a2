// Package seed implementa la fuente remota que puebla el store la primera vez
// que arranca sin snapshot.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
)

// Source entrega la secuencia inicial de usuarios.
type Source interface {
	Fetch(ctx context.Context) ([]repository.UserRecord, error)
}

// FetchError describe una falla de la fuente remota (red, status o payload).
type FetchError struct {
	URL    string
	Status int // 0 si no hubo respuesta
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("seed fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("seed fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPSource hace GET a URL y decodifica un array JSON de usuarios.
// Los campos que no son id/name/email/department quedan en Extra.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// maxBody limita la respuesta del mock API.
const maxBody = 8 << 20

// NewHTTPSource crea una fuente HTTP con timeout propio.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]repository.UserRecord, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: s.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &FetchError{URL: s.URL, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var out []repository.UserRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return nil, &FetchError{URL: s.URL, Err: fmt.Errorf("decode: %w", err)}
	}
	return out, nil
}

// Static es una fuente en memoria. Vacía = modo offline.
type Static []repository.UserRecord

func (s Static) Fetch(ctx context.Context) ([]repository.UserRecord, error) {
	out := make([]repository.UserRecord, len(s))
	for i, u := range s {
		out[i] = u.Clone()
	}
	return out, nil
}

// Failing es una fuente que siempre falla con Err.
type Failing struct{ Err error }

func (f Failing) Fetch(ctx context.Context) ([]repository.UserRecord, error) {
	return nil, &FetchError{URL: "static", Err: f.Err}
}
