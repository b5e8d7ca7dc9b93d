package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenModel mirrors the 'refresh_tokens' table. Only the SHA-256 hash of the
// opaque token is stored; the raw value never touches the database.
type RefreshTokenModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash     string    `gorm:"type:varchar(255);unique;not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`
	CreatedAt     time.Time
	LastUsedAt    *time.Time
	ClientIP      string `gorm:"type:varchar(45)"`
	UserAgent     string `gorm:"type:varchar(255)"`
	Revoked       bool   `gorm:"not null;default:false"`
	RevokedAt     *time.Time
	RevokedReason string `gorm:"type:varchar(50)"`
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// RevokedAccessTokenModel mirrors the 'revoked_access_tokens' table, the blacklist
// consulted on every access token validation. Rows expire with the original token.
type RevokedAccessTokenModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	JTI            string    `gorm:"type:varchar(64);unique;not null;column:jti"`
	UserID         uuid.UUID `gorm:"type:uuid;not null"`
	OriginalExpiry time.Time `gorm:"not null;index"`
	RevokedAt      time.Time
	Reason         string `gorm:"type:varchar(50)"`
}

// TableName explicitly sets the table name for GORM.
func (RevokedAccessTokenModel) TableName() string {
	return "revoked_access_tokens"
}
