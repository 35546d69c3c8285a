package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sindicato status values
const (
	SindicatoStatusPending  = "pending"
	SindicatoStatusApproved = "approved"
)

// Sindicato represents a union (tenant) on the platform. CNPJ is the
// unique external identifier; collisions are rejected by the store.
type Sindicato struct {
	ID         string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string         `json:"name" gorm:"type:varchar(150);not null"`
	CNPJ       string         `json:"cnpj" gorm:"type:varchar(18);uniqueIndex;not null"`
	Email      string         `json:"email" gorm:"type:varchar(100)"`
	Telefone   string         `json:"telefone,omitempty" gorm:"type:varchar(20)"`
	MaxMembers *int           `json:"max_members,omitempty"`
	AdminID    string         `json:"admin_id" gorm:"type:varchar(36);index;not null"`
	Status     string         `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Active     bool           `json:"active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Admin *User `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
}

// BeforeCreate assigns an id when one was not provided.
func (s *Sindicato) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
