package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles recognized by the platform. These values are wire-visible: they
// appear in token claims, stored records and role-gated responses.
const (
	RoleFenafarAdmin   = "FENAFAR_ADMIN"
	RoleSindicatoAdmin = "SINDICATO_ADMIN"
	RoleMember         = "MEMBER"
)

// User represents the application mirror of an identity-provider
// account. The ID is issued by the identity provider and is never
// generated locally.
type User struct {
	ID          string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Name        string         `json:"name" gorm:"type:varchar(100)"`
	Role        string         `json:"role" gorm:"type:varchar(30);not null;default:'MEMBER'"`
	Active      bool           `json:"active" gorm:"default:true"`
	Telefone    string         `json:"telefone,omitempty" gorm:"type:varchar(20)"`
	SindicatoID *string        `json:"sindicato_id,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sindicato *Sindicato `json:"sindicato,omitempty" gorm:"foreignKey:SindicatoID"`
}
