package model

import "time"

// Profile is the customer identity known to the storefront.
type Profile struct {
	ID        string
	Email     string
	FullName  *string
	IsAdmin   bool
	IsBanned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// Principal is the authenticated caller of a customer endpoint.
type Principal struct {
	UserID string
	Email  string
	Name   string
}

func (p Principal) IsZero() bool { return p.UserID == "" }

// Profile converts the session identity into the stored customer record.
func (p Principal) Profile() *Profile {
	prof := &Profile{ID: p.UserID, Email: p.Email}
	if p.Name != "" {
		name := p.Name
		prof.FullName = &name
	}
	return prof
}
