package models

// --- User management ---

// RoleResource is a role as listed by the user-management API.
type RoleResource struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// UserResource is a user as listed by the user-management API.
type UserResource struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email,omitempty"`
	Roles     []RoleResource `json:"roles"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	IsActive  bool           `json:"isActive"`
}

// RoleSet returns the user's canonical role names.
func (u UserResource) RoleSet() RoleSet {
	refs := make([]RoleRef, 0, len(u.Roles))
	for _, r := range u.Roles {
		refs = append(refs, RoleRef{ID: r.ID, Name: r.Name})
	}
	return NewRoleSet(refs...)
}

// ProfileResource is a user profile.
type ProfileResource struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	BirthDate       string `json:"birthDate,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	UserID          int64  `json:"userId"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// CreateProfileRequest creates or assigns a profile.
type CreateProfileRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	BirthDate       string `json:"birthDate,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}
