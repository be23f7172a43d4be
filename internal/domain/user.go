package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthResult is returned by a successful authentication.
type AuthResult struct {
	Token  string   `json:"token"`
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// Identity is the minimal user identity persisted next to the token.
type Identity struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// UserProfile is the full profile of a user.
type UserProfile struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          string    `json:"phone"`
	CityID         int64     `json:"cityId"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	Roles          []string  `json:"roles"`
	RegisteredAt   time.Time `json:"registeredAt"`
	ActiveAdsCount int       `json:"activeAdsCount"`
}

// HasRole reports whether the profile carries the given role.
func (p *UserProfile) HasRole(role string) bool {
	return hasRole(p.Roles, role)
}

// UserSummary is returned after registration.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// RegistrationPayload carries the data of a new account.
type RegistrationPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	CityID    int64  `json:"cityId"`
}

// ProfilePayload carries the editable profile fields.
type ProfilePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	CityID    int64  `json:"cityId"`
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasRole reports whether the auth result carries the given role.
func (a AuthResult) HasRole(role string) bool {
	return hasRole(a.Roles, role)
}
