// Package auth implementa el almacén distribuido de sesiones y el directorio
// de sesiones online. Toda sesión vive en el cache compartido; el proceso no
// guarda nada en memoria, así que cualquier réplica puede atender cualquier
// request.
package auth

// Keyspace contractual del cache. Fijo para interoperar con tooling admin
// externo: no cambiar sin coordinar.
const (
	// tokenKeyPrefix + token → registro JSON de la sesión.
	tokenKeyPrefix = "auth:token:"

	// userTokensKeyPrefix + tenantId:username → token único (single-device)
	// o set de tokens (multi-device).
	userTokensKeyPrefix = "auth:user-tokens:"
)

// TokenKey construye la key de cache de una sesión.
func TokenKey(token string) string {
	return tokenKeyPrefix + token
}

// UserTokensKey construye la key del índice usuario→tokens.
func UserTokensKey(tenantID, username string) string {
	return userTokensKeyPrefix + tenantID + ":" + username
}

// Principal es el payload de identidad tipado de una sesión.
// Nunca un map dinámico: el shape es fijo.
type Principal struct {
	UserID       string   `json:"userId"`
	RoleIDs      []string `json:"roleIds"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
}

// Session es el registro que se serializa a JSON en el cache.
// Una sesión es alcanzable solo por su token y pertenece a exactamente un
// par (tenantId, username).
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	TenantID  string    `json:"tenantId"`
	Principal Principal `json:"principal"`
	IP        string    `json:"ip"`
	Browser   string    `json:"browser"`
	LoginTime int64     `json:"loginTime"` // epoch millis
}
