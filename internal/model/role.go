package model

import "time"

// Role represents an RBAC role.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleWithPermissions extends Role to include its associated permissions.
type RoleWithPermissions struct {
	*Role
	Permissions []string `json:"permissions"`
}

// RoleRequest is the payload for creating or updating a role.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Permissions []string `json:"permissions" binding:"dive,max=64"`
}

// Role names created by the default seed.
const (
	RoleAdministrador = "Administrador"
	RoleServidor      = "Servidor"
	RoleRefeitorio    = "Refeitório"
)

// DefaultRoles lists the seeded roles and their initial grants. The
// Administrador role receives every permission.
var DefaultRoles = []struct {
	Name        string
	Permissions []Permission
}{
	{RoleAdministrador, AllPermissions},
	{RoleServidor, []Permission{
		PermissionCadastrosRead, PermissionEstudantesRead, PermissionOcorrenciasRead,
		PermissionOcorrenciasWrite, PermissionRapidasWrite, PermissionAlertasRead,
		PermissionAtendimentosRead, PermissionPedagogicoRead, PermissionNapneRead,
		PermissionProjetosRead, PermissionProjetosWrite, PermissionMediaUpload,
	}},
	{RoleRefeitorio, []Permission{PermissionRefeitorioRead, PermissionRefeitorioWrite}},
}
