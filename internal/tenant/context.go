// Package tenant implementa el binding inmutable de contexto de tenant por
// request: la tripleta {tenantId, username, userId} que consume toda la
// capa de scoping de queries.
//
// El binding viaja dentro del context.Context del request, por lo que se
// re-establece solo en cada continuación asíncrona (goroutines que reciben
// el ctx): nunca hay estado mutable por worker que pueda filtrarse entre
// requests concurrentes.
package tenant

import "context"

// Sentinels reservados. El super tenant y el super admin bypassean el
// filtrado por tenant en los collaborators de queries.
const (
	DefaultSuperTenantID = "000000"
	DefaultSuperAdmin    = "admin"
)

// Context es la tripleta de identidad de un request. Es un value type:
// una vez bindeado al context.Context no puede mutarse desde afuera.
type Context struct {
	TenantID string
	Username string
	UserID   string
}

// sentinels configurados. Se fijan una vez en el arranque, antes de servir
// tráfico; después solo se leen.
var (
	superTenantID = DefaultSuperTenantID
	superAdmin    = DefaultSuperAdmin
)

// Configure fija los sentinels de super tenant / super admin.
// Llamar una sola vez durante el bootstrap.
func Configure(tenantID, admin string) {
	if tenantID != "" {
		superTenantID = tenantID
	}
	if admin != "" {
		superAdmin = admin
	}
}

// IsSuperTenant indica si el binding pertenece al tenant reservado.
func (c Context) IsSuperTenant() bool {
	return c.TenantID == superTenantID
}

// IsSuperAdmin indica si el binding pertenece al super admin del super tenant.
func (c Context) IsSuperAdmin() bool {
	return c.IsSuperTenant() && c.Username == superAdmin
}

type ctxKey struct{}

// With bindea la tripleta al contexto del request.
func With(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// From extrae el binding del contexto. El segundo retorno distingue
// explícitamente "no bindeado" de "bindeado con valores vacíos".
func From(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	v, ok := ctx.Value(ctxKey{}).(Context)
	return v, ok
}

// ID retorna el tenant id bindeado, o "" si no hay binding.
// El default vacío permite que trabajo iniciado por el sistema (fuera de un
// request) ejecute con valores centinela en lugar de fallar.
func ID(ctx context.Context) string {
	tc, _ := From(ctx)
	return tc.TenantID
}

// Username retorna el username bindeado, o "".
func Username(ctx context.Context) string {
	tc, _ := From(ctx)
	return tc.Username
}

// UserID retorna el user id bindeado, o "".
func UserID(ctx context.Context) string {
	tc, _ := From(ctx)
	return tc.UserID
}
