// Package users contiene DTOs para /v1/users.
package users

import "github.com/dropDatabas3/userdash/internal/domain/repository"

// UserRequest es el body de POST/PUT. No lleva id: lo asigna el store.
type UserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Fields convierte el request a campos de dominio.
func (r UserRequest) Fields() repository.UserFields {
	return repository.UserFields{Name: r.Name, Email: r.Email, Department: r.Department}
}

// ListUsersResponse es la respuesta de GET /v1/users.
// Cada usuario se serializa con sus campos extra.
type ListUsersResponse struct {
	Users      []repository.UserRecord `json:"users"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
	TotalItems int                     `json:"total_items"`
	HasPrev    bool                    `json:"has_prev"`
	HasNext    bool                    `json:"has_next"`
}

// ReloadResponse es la respuesta de POST /v1/users/reload.
type ReloadResponse struct {
	Count int `json:"count"`
}
