package session

// LoginRequest contains the body for POST /v1/session/login.
type LoginRequest struct {
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token     string   `json:"token"`
	TenantID  string   `json:"tenant_id"`
	Username  string   `json:"username"`
	UserID    string   `json:"user_id"`
	RoleIDs   []string `json:"role_ids,omitempty"`
	ExpiresIn int64    `json:"expires_in"` // seconds
}
