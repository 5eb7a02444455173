package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSender    = "sender"
	RoleResponder = "responder"
	RoleOperator  = "operator"
)

// User is the identity read-model this service consumes. Accounts are
// provisioned by the identity service; we only read id, role and the
// contact address used for offline notification. The one exception is
// guest senders created by the public intake flow.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Telephone string    `gorm:"default:null" json:"telephone"`
	Role      string    `gorm:"not null;default:'sender'" json:"role"`
	IsGuest   bool      `gorm:"default:false" json:"is_guest"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserResponse is the participant shape embedded in enriched messages
// and conversation listings.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Fullname string    `json:"fullname"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	}
}
