// Package user holds the primary service's domain model: the authoritative
// user entity and its request/response shapes.
package user

import (
	"net/mail"
	"strings"

	dErrors "usertrail/pkg/domain-errors"
)

// User is the authoritative entity owned by the primary store. Its ID is the
// entity identifier events are keyed by.
type User struct {
	ID       int64
	Email    string
	FullName string
	Active   bool
}

// CreateUserRequest is the POST /api/users body. It doubles as the CREATED
// event payload, serialized as received.
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Active   *bool  `json:"active"`
}

// Validate checks required fields and email syntax.
func (r CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "email is not valid")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "fullName is required")
	}
	if r.Active == nil {
		return dErrors.New(dErrors.CodeBadRequest, "active is required")
	}
	return nil
}

// ToUser builds a new entity from the request. The store assigns the ID.
func (r CreateUserRequest) ToUser() User {
	return User{
		Email:    r.Email,
		FullName: r.FullName,
		Active:   *r.Active,
	}
}

// UpdateUserRequest is the PUT /api/users/{id} body. All fields are
// optional; only supplied fields change. It doubles as the UPDATED event
// payload — omitted fields stay off the wire, so the payload carries exactly
// the changed fields.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Validate checks the supplied fields.
func (r UpdateUserRequest) Validate() error {
	if r.Email != nil {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			return dErrors.New(dErrors.CodeBadRequest, "email is not valid")
		}
	}
	if r.FullName != nil && strings.TrimSpace(*r.FullName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "fullName must not be blank")
	}
	return nil
}

// Apply overlays the supplied fields onto u.
func (r UpdateUserRequest) Apply(u *User) {
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.FullName != nil {
		u.FullName = *r.FullName
	}
	if r.Active != nil {
		u.Active = *r.Active
	}
}

// Response is the user representation on the wire.
type Response struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Active   bool   `json:"active"`
}

// ToResponse maps the entity onto its wire representation.
func ToResponse(u User) Response {
	return Response{ID: u.ID, Email: u.Email, FullName: u.FullName, Active: u.Active}
}
