// Package store define el collaborator de credenciales que usa el login.
//
// La persistencia de entidades de negocio no es parte de este servicio; acá
// solo vive lo mínimo para verificar credenciales y armar el principal de la
// sesión.
package store

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound indica que el usuario no existe en el tenant.
var ErrNotFound = errors.New("store: user not found")

// User es la proyección de un usuario para autenticación.
type User struct {
	ID           string
	TenantID     string
	Username     string
	PasswordHash string
	RoleIDs      []string
	IsSuperAdmin bool
}

// CheckPassword verifica la password contra el hash almacenado.
// La elección del algoritmo de hashing es del sistema que escribe el hash;
// acá solo se compara.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CredentialRepository resuelve usuarios para el check de credenciales.
type CredentialRepository interface {
	// GetUserByUsername busca un usuario dentro de un tenant.
	// Retorna ErrNotFound si no existe.
	GetUserByUsername(ctx context.Context, tenantID, username string) (*User, error)
}
