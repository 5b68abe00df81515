package core

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email address")

// Profile is the account holder shown on the profile page.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	JoinDate  Date   `json:"joinDate"`
}

// ProfileUpdate is a partial profile. Nil fields keep their current value.
// The username and join date are fixed by the account.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// DefaultProfile is the profile of a fresh install.
func DefaultProfile() Profile {
	return Profile{
		Username:  "moowan06",
		FirstName: "Moo",
		LastName:  "Wan",
		Email:     "moowan@example.com",
		JoinDate:  NewDate(2024, 1, 1),
	}
}

// Apply merges the set fields of u into p. An email must be a bare address;
// the names are taken as given after trimming.
func (u ProfileUpdate) Apply(p Profile) (Profile, error) {
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return Profile{}, invalid("email", ErrInvalidEmail)
		}
		p.Email = email
	}
	if u.FirstName != nil {
		p.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		p.LastName = strings.TrimSpace(*u.LastName)
	}
	return p, nil
}
