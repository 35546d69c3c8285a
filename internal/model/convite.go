package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Convite represents an invitation to join the platform in a given
// role, optionally scoped to a sindicato. The token is the
// externally-facing identifier used in acceptance URLs and must be
// treated as a bearer credential.
//
// Used transitions false -> true exactly once, on successful
// acceptance. Expiry is a logical state: expired invitations are kept,
// they just stop being acceptable.
type Convite struct {
	ID          string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Token       string         `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Role        string         `json:"role" gorm:"type:varchar(30);not null"`
	SindicatoID *string        `json:"sindicato_id,omitempty" gorm:"type:varchar(36);index"`
	MaxMembers  *int           `json:"max_members,omitempty"`
	CriadoPorID string         `json:"criado_por_id" gorm:"type:varchar(36);index;not null"`
	ExpiresAt   time.Time      `json:"expires_at" gorm:"not null"`
	Used        bool           `json:"used" gorm:"default:false;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sindicato *Sindicato `json:"sindicato,omitempty" gorm:"foreignKey:SindicatoID"`
	CriadoPor *User      `json:"criado_por,omitempty" gorm:"foreignKey:CriadoPorID"`
}

// BeforeCreate assigns an id when one was not provided.
func (c *Convite) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Acceptable reports whether the invitation can still be consumed at
// the given instant.
func (c *Convite) Acceptable(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
