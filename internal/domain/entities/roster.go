package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProjectMember is a registered user belonging to a project
type ProjectMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Role      string    `json:"role,omitempty" gorm:"type:varchar(50)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProjectMember) TableName() string {
	return "project_members"
}

// ProjectContact is a lightweight external person (no account) attached to a
// project
type ProjectContact struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID    uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email,omitempty" gorm:"type:varchar(255);index"`
	Organization string    `json:"organization,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProjectContact) TableName() string {
	return "project_contacts"
}

// Roster is a project's people: registered members plus lightweight contacts
type Roster struct {
	Members  []ProjectMember
	Contacts []ProjectContact
}
