package models

import "time"

// Principal is the document-store record of a registered user. Its ID is
// the identity provider uid.
type Principal struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Username      string     `json:"username"`
	Role          Role       `json:"role"`
	Disabled      bool       `json:"disabled"`
	EmailVerified bool       `json:"emailVerified"`
	ProfileImage  string     `json:"profileImage"`
	Bio           string     `json:"bio"`
	PhoneNumber   string     `json:"phoneNumber"`
	Website       string     `json:"website"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastLogin     *time.Time `json:"lastLogin"`
}

// PrincipalUpdate is a partial update; nil fields are left unchanged.
type PrincipalUpdate struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Email        *string `json:"email,omitempty"`
	Username     *string `json:"username,omitempty"`
	Role         *Role   `json:"role,omitempty"`
	PhoneNumber  *string `json:"phoneNumber,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Website      *string `json:"website,omitempty"`
	Disabled     *bool   `json:"-"`
	ProfileImage *string `json:"-"`
}

// Empty reports whether the update changes nothing.
func (u PrincipalUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Username == nil &&
		u.Role == nil && u.PhoneNumber == nil && u.Bio == nil && u.Website == nil &&
		u.Disabled == nil && u.ProfileImage == nil
}
