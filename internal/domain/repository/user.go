package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// UserRecord representa un usuario administrado por el dashboard.
//
// ID es denso y contiguo (1..N) dentro del store; lo asigna el store, nunca el cliente.
// Extra conserva los campos que trae la fuente remota (username, phone, address, company, ...)
// para que sobrevivan al ciclo load → persist → reload aunque el store no los use.
type UserRecord struct {
	ID         int
	Name       string
	Email      string
	Department string
	Extra      map[string]json.RawMessage
}

// UserFields son los datos editables de un usuario nuevo (sin ID).
type UserFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Fields devuelve la parte editable del registro.
func (u UserRecord) Fields() UserFields {
	return UserFields{Name: u.Name, Email: u.Email, Department: u.Department}
}

// WithFields devuelve una copia del registro con los campos editables reemplazados.
// ID y Extra se preservan.
func (u UserRecord) WithFields(f UserFields) UserRecord {
	u.Name = f.Name
	u.Email = f.Email
	u.Department = f.Department
	return u
}

// Clone copia el registro incluyendo el mapa Extra.
func (u UserRecord) Clone() UserRecord {
	if u.Extra != nil {
		extra := make(map[string]json.RawMessage, len(u.Extra))
		for k, v := range u.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		u.Extra = extra
	}
	return u
}

var coreKeys = [...]string{"id", "name", "email", "department"}

func isCoreKey(k string) bool {
	for _, c := range coreKeys {
		if c == k {
			return true
		}
	}
	return false
}

// MarshalJSON serializa como {"id","name","email","department", ...extra}.
// Las keys extra se emiten ordenadas para que el snapshot sea determinístico.
func (u UserRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		kb, _ := json.Marshal(key)
		vb, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("user %d: field %s: %w", u.ID, key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}

	if err := write("id", u.ID); err != nil {
		return nil, err
	}
	if err := write("name", u.Name); err != nil {
		return nil, err
	}
	if err := write("email", u.Email); err != nil {
		return nil, err
	}
	if err := write("department", u.Department); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		if !isCoreKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, u.Extra[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeCore(raw map[string]json.RawMessage, key string, dst any) {
	v, ok := raw[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(v, dst); err != nil {
		logger.L().Debug("core field dropped",
			logger.Layer("repository"),
			logger.String("field", key),
			logger.Err(err),
		)
	}
}

// UnmarshalJSON acepta cualquier objeto JSON. Los campos core mal tipados
// (ej: id string de un upstream raro) quedan en cero y se loguean en debug;
// el store reasigna el ID de todas formas y los strings vacíos se muestran como N/A.
func (u *UserRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = UserRecord{}
	decodeCore(raw, "id", &u.ID)
	decodeCore(raw, "name", &u.Name)
	decodeCore(raw, "email", &u.Email)
	decodeCore(raw, "department", &u.Department)

	for k, v := range raw {
		if isCoreKey(k) {
			continue
		}
		if u.Extra == nil {
			u.Extra = make(map[string]json.RawMessage)
		}
		// compactado: igual a como queda tras persistir
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return err
		}
		u.Extra[k] = buf.Bytes()
	}
	return nil
}
