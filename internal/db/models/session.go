package models

import "time"

// Session stores the credential bundle for one browser session. The row is
// created at login, replaced wholesale on token refresh and deleted on
// logout; nothing outlives the session it belongs to.
type Session struct {
	ID           string `gorm:"primaryKey"` // UUID carried by the signed cookie
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LoggedIn     bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
