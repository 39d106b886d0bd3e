package models

import "time"

type Role string

const (
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

func AllRoles() []Role {
	return []Role{RoleStaff, RoleTechnician, RoleManager, RoleAdmin}
}

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleStaff, RoleTechnician, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
