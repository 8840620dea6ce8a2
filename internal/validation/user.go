package validation

import (
	"regexp"
	"strings"

	"github.com/dropDatabas3/userdash/internal/domain/repository"
)

// Mensajes mostrados junto a cada campo del formulario.
const (
	MsgNameRequired       = "Name is required"
	MsgEmailRequired      = "Email is required"
	MsgEmailInvalid       = "Please enter a valid email address"
	MsgDepartmentRequired = "Department is required"
	MsgEmailExists        = "Email already exists"
)

// Email rules (loose on purpose, same as the form):
// - At least one non-space char, "@", non-space chars, ".", non-space chars.
// - Unanchored: "x a@b.c y" passes.
//
// Examples valid: a@x.com, first.last@sub.example.org
// Examples invalid: plain, a@b, @x, a@.c (no char between @ and .)
var emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail returns true if s has the loose email shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// FieldErrors mapea campo (name|email|department) a mensaje.
type FieldErrors map[string]string

// Empty reports whether there are no errors.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// ValidateUser chequea los campos antes de llamar al store.
// Vacío o solo espacios cuenta como ausente.
func ValidateUser(f repository.UserFields) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = MsgNameRequired
	}
	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = MsgEmailRequired
	case !ValidEmail(f.Email):
		errs["email"] = MsgEmailInvalid
	}
	if strings.TrimSpace(f.Department) == "" {
		errs["department"] = MsgDepartmentRequired
	}
	return errs
}
