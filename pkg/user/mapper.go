package user

import (
	"strings"
	"time"

	"github.com/jinzhu/copier"

	"github.com/tendant/simple-todo/pkg/role"
)

// UserDTO is the transport shape of a user. The password hash never leaves the service.
type UserDTO struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToDTO(u User, roleNames []string) UserDTO {
	var dto UserDTO
	_ = copier.Copy(&dto, &u)
	if roleNames == nil {
		roleNames = []string{}
	}
	dto.Roles = roleNames
	return dto
}

// ToDTOWithRoles maps a user together with its resolved roles.
func ToDTOWithRoles(u UserWithRoles) UserDTO {
	return ToDTO(u.User, role.Names(u.Roles))
}

// FromCreate builds the storage parameters for a new user.
func FromCreate(in CreateInput, passwordHash string, now time.Time) CreateUserParams {
	return CreateUserParams{
		UserName:     strings.TrimSpace(in.UserName),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}
