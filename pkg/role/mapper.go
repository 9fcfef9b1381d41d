package role

import (
	"strings"

	"github.com/jinzhu/copier"
)

// RoleDTO is the transport shape of a role.
type RoleDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleUserDTO is the transport shape of a user holding a role.
type RoleUserDTO struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

func ToDTO(r Role) RoleDTO {
	var dto RoleDTO
	_ = copier.Copy(&dto, &r)
	return dto
}

func ToDTOs(roles []Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, r := range roles {
		dtos[i] = ToDTO(r)
	}
	return dtos
}

func ToRoleUserDTOs(users []RoleUser) []RoleUserDTO {
	dtos := make([]RoleUserDTO, len(users))
	for i, u := range users {
		_ = copier.Copy(&dtos[i], &u)
	}
	return dtos
}

// FromCreate builds the storage parameters for a new role.
func FromCreate(in CreateRoleInput) CreateRoleParams {
	return CreateRoleParams{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}

// Names returns the role names in order.
func Names(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}
