package models

import (
	"strings"
	"time"
)

// AdminRole is the role of a back-office operator
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super-admin"
	RoleAdmin      AdminRole = "admin"
)

// AdminStatus is the account status of an operator
type AdminStatus string

const (
	AdminActive    AdminStatus = "active"
	AdminSuspended AdminStatus = "suspended"
)

// Permission grants actions on a resource
type Permission struct {
	Resource string   `json:"resource" validate:"required"`
	Actions  []string `json:"actions" validate:"min=1,dive,required"`
}

// PermissionDefinition is a grantable permission as listed by the backend
type PermissionDefinition struct {
	Resource    string   `json:"resource"`
	Actions     []string `json:"actions"`
	Description string   `json:"description"`
}

// Admin is a back-office operator account
type Admin struct {
	ID                string       `json:"id"`
	Username          string       `json:"username"`
	Role              AdminRole    `json:"role"`
	Status            AdminStatus  `json:"status"`
	Permissions       []Permission `json:"permissions,omitempty"`
	CreatedBy         string       `json:"createdBy,omitempty"`
	CreatedByUsername string       `json:"createdByUsername,omitempty"`
	LastLogin         *time.Time   `json:"lastLogin,omitempty"`
	PermissionCount   int          `json:"permissionCount"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// IsSuperAdmin reports whether the operator bypasses permission checks
func (a *Admin) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleSuperAdmin
}

// Can reports whether the operator may perform action on resource
func (a *Admin) Can(resource, action string) bool {
	if a == nil || a.Status != AdminActive {
		return false
	}
	if a.IsSuperAdmin() {
		return true
	}
	for _, p := range a.Permissions {
		if p.Resource != resource {
			continue
		}
		for _, act := range p.Actions {
			if act == action {
				return true
			}
		}
	}
	return false
}

// AdminFilters are the admin list query parameters
type AdminFilters struct {
	ListQuery
	Status AdminStatus `json:"status,omitempty"`
}

func (f AdminFilters) Params() map[string]any {
	return with(f.ListQuery.Params(), "status", string(f.Status))
}

// AdminForm is the create/edit payload for operators
type AdminForm struct {
	Username        string       `json:"username" validate:"required,min=3,max=50,username"`
	Password        string       `json:"password,omitempty"`
	ConfirmPassword string       `json:"confirmPassword,omitempty"`
	Role            AdminRole    `json:"role" validate:"required,oneof=super-admin admin"`
	Status          AdminStatus  `json:"status" validate:"required,oneof=active suspended"`
	Permissions     []Permission `json:"permissions" validate:"min=1,dive"`
}

// Payload strips form-only fields before sending. Usernames are stored
// lower case.
func (f AdminForm) Payload() AdminForm {
	f.Username = strings.ToLower(strings.TrimSpace(f.Username))
	f.ConfirmPassword = ""
	return f
}
