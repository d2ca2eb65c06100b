// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema created by the database package.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the fixed set of areas a complaint can be filed under
type Category string

const (
	CategoryAcademics      Category = "Academics"
	CategoryHostel         Category = "Hostel"
	CategoryCanteen        Category = "Canteen"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryTransport      Category = "Transport"
	CategoryOthers         Category = "Others"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryAcademics,
	CategoryHostel,
	CategoryCanteen,
	CategoryInfrastructure,
	CategoryTransport,
	CategoryOthers,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Status is the lifecycle state of a complaint
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in workflow order
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Role tags a principal as a student or an administrator
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole converts raw input (e.g. a token claim) into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Complaint is a student-submitted issue tracked until an administrator resolves it
type Complaint struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	OwnerID      uuid.UUID    `json:"userId" db:"owner_id"`
	Category     Category     `json:"category" db:"category"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	Status       Status       `json:"status" db:"status"`
	AdminRemarks string       `json:"adminRemarks" db:"admin_remarks"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
	Owner        *UserSummary `json:"owner,omitempty" db:"-"`
}

// ComplaintInput is the request body for filing or editing a complaint
type ComplaintInput struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StatusInput is the request body for an administrator status change.
// A nil AdminRemarks leaves the stored remarks untouched.
type StatusInput struct {
	Status       string  `json:"status"`
	AdminRemarks *string `json:"adminRemarks,omitempty"`
}

// ComplaintFilter narrows a listing; nil dimensions match every value
type ComplaintFilter struct {
	Status   *Status
	Category *Category
}

// ComplaintPatch carries the fields an update writes; nil fields are left as stored
type ComplaintPatch struct {
	Category     *Category
	Title        *string
	Description  *string
	Status       *Status
	AdminRemarks *string

	// IfStatus makes the write conditional on the stored status
	IfStatus *Status
}

// Empty reports whether the patch changes nothing
func (p ComplaintPatch) Empty() bool {
	return p.Category == nil && p.Title == nil && p.Description == nil &&
		p.Status == nil && p.AdminRemarks == nil
}

// GroupField names a column complaints can be counted by
type GroupField string

const (
	GroupByCategory GroupField = "category"
	GroupByStatus   GroupField = "status"
)

// Statistics is the admin dashboard snapshot
type Statistics struct {
	Total      int64              `json:"total"`
	Pending    int64              `json:"pending"`
	InProgress int64              `json:"inProgress"`
	Resolved   int64              `json:"resolved"`
	ByCategory map[Category]int64 `json:"byCategory"`
}

// User is an account able to sign in
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Summary returns the public part of the user shown next to complaints
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the owner information attached to a complaint
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Principal is the authenticated identity behind a request
type Principal struct {
	UserID uuid.UUID `json:"id"`
	Role   Role      `json:"role"`
	Name   string    `json:"name,omitempty"`
}

// IsAdmin reports whether the principal carries the admin role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// RegisterRequest is the request body for creating a student account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after a successful login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}
