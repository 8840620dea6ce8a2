package repository

import "errors"

var (
	// ErrNotFound indica que el usuario solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail indica que otro usuario ya tiene ese email (match exacto, case-sensitive).
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrStorageUnavailable indica que el Persistence Adapter no pudo leer o escribir el snapshot.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateEmail verifica si el error es ErrDuplicateEmail.
func IsDuplicateEmail(err error) bool {
	return errors.Is(err, ErrDuplicateEmail)
}

// IsStorageUnavailable verifica si el error es ErrStorageUnavailable.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
