// Package pagination deriva ventanas de página sobre una secuencia.
// No guarda estado: la página actual la mantiene el caller.
package pagination

// DefaultPageSize es el tamaño de página del dashboard.
const DefaultPageSize = 10

func normSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}
	return size
}

// TotalPages = ceil(length / size), mínimo 0.
func TotalPages(length, size int) int {
	if length <= 0 {
		return 0
	}
	size = normSize(size)
	return (length-1)/size + 1
}

// Window devuelve items[(page-1)*size : page*size] recortado a los límites.
// Fuera de rango devuelve una ventana vacía, nunca error.
func Window[T any](items []T, page, size int) []T {
	size = normSize(size)
	if page < 1 || page > TotalPages(len(items), size) {
		return []T{}
	}
	start := (page - 1) * size
	end := min(len(items), start+size)
	return items[start:end]
}

// Navigate devuelve requested si 1 <= requested <= total; si no, current.
func Navigate(current, requested, total int) int {
	if requested >= 1 && requested <= total {
		return requested
	}
	return current
}

// PageNumbers devuelve 1..total para los botones del pager.
func PageNumbers(total int) []int {
	if total <= 0 {
		return nil
	}
	out := make([]int, total)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Page es una ventana con sus totales.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
}

// Paginate arma la Page pedida. page no se clampea: una página fuera de rango
// queda con Items vacío.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = normSize(size)
	total := TotalPages(len(items), size)
	return Page[T]{
		Items:      Window(items, page, size),
		Page:       page,
		PageSize:   size,
		TotalPages: total,
		TotalItems: len(items),
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
}
