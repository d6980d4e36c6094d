package models

import "time"

// PlatformCredential is the connection state for one platform. The
// access token is stored AES-GCM encrypted; the engine decrypts a
// fresh copy at the start of every run. Metadata carries platform
// extras such as the linkedin author URN.
type PlatformCredential struct {
	ID          int64             `db:"id" json:"id"`
	Platform    string            `db:"platform" json:"platform"`
	AccessToken string            `db:"access_token" json:"-"`
	AccountID   string            `db:"account_id" json:"account_id"`
	Metadata    map[string]string `db:"metadata" json:"metadata"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}
