// Package dashboard modela la pantalla de administración de usuarios:
// qué página se ve, qué formulario está abierto y qué errores mostrar.
// Los intents (NewUser, EditUser, Save, DeleteUser, GoToPage, ...) llaman al
// store; View arma el estado a renderizar.
//
// Un Dashboard no es seguro para uso concurrente: cada sesión (shell, test)
// tiene el suyo.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
	"github.com/dropDatabas3/userdash/internal/pagination"
	"github.com/dropDatabas3/userdash/internal/validation"
)

// Store es lo que el dashboard necesita del User Store.
type Store interface {
	Load(ctx context.Context) ([]repository.UserRecord, error)
	Add(ctx context.Context, f repository.UserFields) (repository.UserRecord, error)
	Update(ctx context.Context, rec repository.UserRecord) (repository.UserRecord, error)
	Delete(ctx context.Context, id int) error
	Get(id int) (repository.UserRecord, error)
	List() []repository.UserRecord
	Len() int
	Loading() bool
}

var (
	// ErrNoForm se devuelve al guardar sin formulario abierto.
	ErrNoForm = errors.New("dashboard: no form open")
	// ErrValidation indica que el formulario tiene errores de campo.
	ErrValidation = errors.New("dashboard: validation failed")
	// ErrUnknownField se devuelve en SetField con un campo que no existe.
	ErrUnknownField = errors.New("dashboard: unknown field")
)

// Draft es el formulario abierto: NewUserDraft o ExistingUserDraft.
type Draft interface {
	fields() repository.UserFields
	withFields(f repository.UserFields) Draft
}

// NewUserDraft es el formulario de alta.
type NewUserDraft struct {
	Fields repository.UserFields
}

func (d NewUserDraft) fields() repository.UserFields { return d.Fields }

func (d NewUserDraft) withFields(f repository.UserFields) Draft {
	d.Fields = f
	return d
}

// ExistingUserDraft es el formulario de edición. Record conserva ID y campos extra.
type ExistingUserDraft struct {
	Record repository.UserRecord
}

func (d ExistingUserDraft) fields() repository.UserFields { return d.Record.Fields() }

func (d ExistingUserDraft) withFields(f repository.UserFields) Draft {
	d.Record = d.Record.WithFields(f)
	return d
}

// Dashboard mantiene el estado de la pantalla.
type Dashboard struct {
	store    Store
	pageSize int
	current  int

	form       Draft
	fieldErrs  validation.FieldErrors
	emailError string
}

// New crea un dashboard en la página 1. pageSize < 1 usa el default.
func New(store Store, pageSize int) *Dashboard {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &Dashboard{store: store, pageSize: pageSize, current: 1}
}

// Load carga el store (snapshot o seed remoto).
func (d *Dashboard) Load(ctx context.Context) error {
	_, err := d.store.Load(ctx)
	return err
}

// NewUser abre el formulario de alta vacío.
func (d *Dashboard) NewUser() {
	d.open(NewUserDraft{})
}

// EditUser abre el formulario de edición con rec.
func (d *Dashboard) EditUser(rec repository.UserRecord) {
	d.open(ExistingUserDraft{Record: rec.Clone()})
}

// EditUserID busca el usuario y abre su formulario.
func (d *Dashboard) EditUserID(id int) error {
	rec, err := d.store.Get(id)
	if err != nil {
		return err
	}
	d.EditUser(rec)
	return nil
}

func (d *Dashboard) open(draft Draft) {
	d.form = draft
	d.fieldErrs = nil
	d.emailError = ""
}

// CloseForm cierra el formulario y limpia el error de email.
func (d *Dashboard) CloseForm() {
	d.open(nil)
}

// Form devuelve el formulario abierto (nil si no hay).
func (d *Dashboard) Form() Draft { return d.form }

// SetField modifica un campo del formulario abierto y limpia su error.
func (d *Dashboard) SetField(name, value string) error {
	if d.form == nil {
		return ErrNoForm
	}
	f := d.form.fields()
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "name":
		f.Name = value
	case "email":
		f.Email = value
	case "department":
		f.Department = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	d.form = d.form.withFields(f)
	delete(d.fieldErrs, key)
	return nil
}

// SaveDraft guarda los campos actuales del formulario.
func (d *Dashboard) SaveDraft(ctx context.Context) error {
	if d.form == nil {
		return ErrNoForm
	}
	return d.Save(ctx, d.form.fields())
}

// Save despacha a AddUser o UpdateUser según el formulario abierto.
func (d *Dashboard) Save(ctx context.Context, f repository.UserFields) error {
	switch draft := d.form.(type) {
	case NewUserDraft:
		return d.AddUser(ctx, f)
	case ExistingUserDraft:
		return d.UpdateUser(ctx, draft.Record.WithFields(f))
	default:
		return ErrNoForm
	}
}

// AddUser valida y agrega. Con email duplicado deja el formulario abierto
// con "Email already exists".
func (d *Dashboard) AddUser(ctx context.Context, f repository.UserFields) error {
	if !d.validate(f) {
		return ErrValidation
	}
	_, err := d.store.Add(ctx, f)
	return d.afterSave(ctx, "AddUser", err)
}

// UpdateUser valida y actualiza en su lugar.
func (d *Dashboard) UpdateUser(ctx context.Context, rec repository.UserRecord) error {
	if !d.validate(rec.Fields()) {
		return ErrValidation
	}
	_, err := d.store.Update(ctx, rec)
	return d.afterSave(ctx, "UpdateUser", err)
}

func (d *Dashboard) validate(f repository.UserFields) bool {
	if d.form != nil {
		d.form = d.form.withFields(f)
	}
	errs := validation.ValidateUser(f)
	if !errs.Empty() {
		d.fieldErrs = errs
		return false
	}
	d.fieldErrs = nil
	return true
}

func (d *Dashboard) afterSave(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		d.CloseForm()
		return nil
	case repository.IsDuplicateEmail(err):
		d.emailError = validation.MsgEmailExists
		return err
	default:
		logger.From(ctx).Error("save failed",
			logger.Component("dashboard"),
			logger.Op(op),
			logger.Err(err),
		)
		return err
	}
}

// DeleteUser borra y re-numera. La página actual no se ajusta.
func (d *Dashboard) DeleteUser(ctx context.Context, id int) error {
	return d.store.Delete(ctx, id)
}

// GoToPage cambia de página solo si n está en 1..totalPages.
func (d *Dashboard) GoToPage(n int) {
	total := pagination.TotalPages(d.store.Len(), d.pageSize)
	d.current = pagination.Navigate(d.current, n, total)
}

// NextPage y PrevPage equivalen a los botones Next / Previous.
func (d *Dashboard) NextPage() { d.GoToPage(d.current + 1) }
func (d *Dashboard) PrevPage() { d.GoToPage(d.current - 1) }

// CurrentPage devuelve la página activa.
func (d *Dashboard) CurrentPage() int { return d.current }

// View es lo que se renderiza.
type View struct {
	Loading bool

	Users       []repository.UserRecord
	Page        int
	TotalPages  int
	TotalUsers  int
	PageNumbers []int
	HasPrev     bool
	HasNext     bool

	// Form != nil reemplaza la tabla.
	Form *FormView
}

// FormView es el formulario a renderizar.
type FormView struct {
	Title      string
	ID         int // 0 en alta
	Fields     repository.UserFields
	Errors     validation.FieldErrors
	EmailError string
}

// View arma el estado actual.
func (d *Dashboard) View() View {
	p := pagination.Paginate(d.store.List(), d.current, d.pageSize)
	v := View{
		Loading:     d.store.Loading(),
		Users:       p.Items,
		Page:        p.Page,
		TotalPages:  p.TotalPages,
		TotalUsers:  p.TotalItems,
		PageNumbers: pagination.PageNumbers(p.TotalPages),
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
	}

	switch draft := d.form.(type) {
	case NewUserDraft:
		v.Form = &FormView{Title: "Add User", Fields: draft.Fields}
	case ExistingUserDraft:
		v.Form = &FormView{Title: "Edit User", ID: draft.Record.ID, Fields: draft.Record.Fields()}
	}
	if v.Form != nil {
		v.Form.Errors = d.fieldErrs
		v.Form.EmailError = d.emailError
	}
	return v
}
