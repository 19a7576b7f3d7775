package session

// MeResponse describes the authenticated caller for GET /v1/auth/me.
type MeResponse struct {
	TenantID     string   `json:"tenant_id"`
	Username     string   `json:"username"`
	UserID       string   `json:"user_id"`
	RoleIDs      []string `json:"role_ids,omitempty"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	IP           string   `json:"ip,omitempty"`
	Browser      string   `json:"browser,omitempty"`
	LoginTime    int64    `json:"login_time,omitempty"` // epoch millis
}
