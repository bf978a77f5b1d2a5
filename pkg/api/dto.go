package api

import (
	"time"

	"github.com/kubestro/core/pkg/user"
)

// userDTO is the wire shape of an account. The password hash never
// leaves the server.
type userDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserDTO(u *user.User) userDTO {
	return userDTO{
		ID:        u.ID.String(),
		Username:  u.Username.String(),
		Email:     u.Email.String(),
		Provider:  string(u.Provider),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
