package admin

// OnlineSession is one live session of an online user.
type OnlineSession struct {
	Token     string `json:"token"`
	IP        string `json:"ip,omitempty"`
	Browser   string `json:"browser,omitempty"`
	LoginTime int64  `json:"login_time"` // epoch millis
}

// OnlineUser groups the live sessions of one user.
type OnlineUser struct {
	TenantID string          `json:"tenant_id"`
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Sessions []OnlineSession `json:"sessions"`
}

// OnlineListResponse is returned by GET /v1/admin/online.
type OnlineListResponse struct {
	Users []OnlineUser `json:"users"`
	Total int          `json:"total"`
}

// KickoutResponse reports how many sessions a kickout removed.
type KickoutResponse struct {
	Removed int `json:"removed"`
}
