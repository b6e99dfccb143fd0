package service

import (
	"errors"
	"slices"

	"github.com/ifb/ocorrencias-backend/internal/model"
)

// Errors shared by the domain services.
var (
	ErrServidorRequired = errors.New("action requires a staff profile")
	ErrNotAllowed       = errors.New("action not allowed for this user")
	ErrPeriodoInvalido  = errors.New("end date is before start date")
)

// Actor is the authenticated user a service call acts on behalf of.
type Actor struct {
	UsuarioID   int
	ServidorID  *int
	Coordenacao model.Coordenacao
	Comissao    bool
	Superuser   bool
	Permissions []string
}

// Has reports whether the actor holds the permission.
func (a Actor) Has(p model.Permission) bool {
	return a.Superuser || slices.Contains(a.Permissions, string(p))
}

// Servidor returns the staff id or ErrServidorRequired.
func (a Actor) Servidor() (int, error) {
	if a.ServidorID == nil {
		return 0, ErrServidorRequired
	}
	return *a.ServidorID, nil
}

// IsServidor reports whether the actor's staff id is id.
func (a Actor) IsServidor(id int) bool {
	return a.ServidorID != nil && *a.ServidorID == id
}

// pageBounds normalizes paging input: page starts at 1 and perPage is kept in 1..100.
func pageBounds(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
