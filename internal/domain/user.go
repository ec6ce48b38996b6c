package domain

import "time"

// User is an account holder. PasswordHash never leaves the server; API
// responses strip it.
type User struct {
	Entity
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	DisplayName  string    `json:"display_name"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Name picks the label to show for the user: display name, then
// username, then email.
func (u *User) Name() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// Session is one device's refresh-token session. The hash, like a
// password hash, stays server-side.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	// Self-reported device details, shown in the active-sessions list.
	DeviceType      string `json:"device_type"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	ClientName      string `json:"client_name"`
	ClientVersion   string `json:"client_version"`
	BrowserName     string `json:"browser_name,omitempty"`
	BrowserVersion  string `json:"browser_version,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName describes the device for humans, e.g. "Safari - macOS"
// or "iOS 17.2".
func (s *Session) DisplayName() string {
	switch {
	case s.BrowserName != "":
		return labelWith(s.BrowserName, " - ", s.Platform)
	case s.Platform != "":
		return labelWith(s.Platform, " ", s.PlatformVersion)
	case s.ClientName != "":
		return labelWith(s.ClientName, " ", s.ClientVersion)
	default:
		return "Unknown Device"
	}
}

func labelWith(base, sep, extra string) string {
	if extra == "" {
		return base
	}
	return base + sep + extra
}
