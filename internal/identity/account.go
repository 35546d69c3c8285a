package identity

import (
	"time"

	"gorm.io/gorm"
)

// Account is the credential record owned by the local identity
// provider. It lives in its own table, apart from the application's
// user mirror.
type Account struct {
	ID           string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName pins the table apart from the application users table.
func (Account) TableName() string {
	return "identity_accounts"
}
