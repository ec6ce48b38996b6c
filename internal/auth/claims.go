package auth

import "time"

// AccessClaims is the decrypted claim set of an access token. The
// custom claims come first; the rest are the registered PASETO claims
// the parser validates.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"session_id"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// DeviceInfo is what a client reports about itself at login. It is
// stored on the session for the active-sessions list and for spotting
// suspicious logins.
type DeviceInfo struct {
	// DeviceType is one of mobile, tablet, desktop, or web.
	DeviceType string `json:"device_type"`

	// Platform and its version, e.g. "iOS" / "17.2" or "Linux" / "6.8".
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`

	// ClientName identifies the app build, e.g. "ReadLoop Web" 1.0.0.
	ClientName    string `json:"client_name"`
	ClientVersion string `json:"client_version"`

	// Browser fields are set by web clients only.
	BrowserName    string `json:"browser_name"`
	BrowserVersion string `json:"browser_version"`
}

// IsValid reports whether the minimum identifying fields are present.
func (d DeviceInfo) IsValid() bool {
	return d.DeviceType != "" && d.Platform != ""
}
