package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del User Store. Viven en un paquete aparte para que users y http
// puedan registrarlas sin importarse entre sí.

var (
	UsersTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "userdash_users_total",
		Help: "Cantidad de usuarios en el store",
	})

	StoreMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "userdash_store_mutations_total",
		Help: "Mutaciones del store por operación y resultado",
	}, []string{"op", "result"}) // op: add|update|delete; result: ok|duplicate|not_found|error

	SeedFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "userdash_seed_fetch_total",
		Help: "Fetches a la fuente remota por resultado",
	}, []string{"result"}) // ok|error
)

// Resultados usados como label.
const (
	ResultOK        = "ok"
	ResultDuplicate = "duplicate"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

// RecordMutation cuenta una mutación del store.
func RecordMutation(op, result string) {
	StoreMutationsTotal.WithLabelValues(op, result).Inc()
}

// SetUsers actualiza el gauge de usuarios.
func SetUsers(n int) {
	UsersTotal.Set(float64(n))
}

// RecordSeedFetch cuenta un fetch a la fuente remota.
func RecordSeedFetch(result string) {
	SeedFetchTotal.WithLabelValues(result).Inc()
}
