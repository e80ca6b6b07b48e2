package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is a resolved Slack user profile.
type User struct {
	ID       string
	Name     string
	Email    string
	TZOffset int // seconds from GMT
}

// Location returns the user's timezone as a fixed-offset location.
func (u User) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", u.TZOffset/3600), u.TZOffset)
}

type userJSON struct {
	ID      string `json:"id"`
	TZ      int    `json:"tz_offset"`
	Profile struct {
		Name  string `json:"real_name"`
		Email string `json:"email"`
	} `json:"profile"`
}

// MarshalJSON encodes the user in Slack's users.info wire shape.
func (u User) MarshalJSON() ([]byte, error) {
	var w userJSON
	w.ID = u.ID
	w.TZ = u.TZOffset
	w.Profile.Name = u.Name
	w.Profile.Email = u.Email
	return json.Marshal(w)
}

// UnmarshalJSON decodes the user from Slack's users.info wire shape.
func (u *User) UnmarshalJSON(data []byte) error {
	var w userJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	u.ID = w.ID
	u.TZOffset = w.TZ
	u.Name = w.Profile.Name
	u.Email = w.Profile.Email
	return nil
}

// UserRef references a Slack user either as a bare identifier or as a resolved
// profile. It is always resolvable to an identifier.
type UserRef struct {
	ID   string `json:"id"`
	User *User  `json:"user,omitempty"`
}

// RefByID references a user by bare identifier.
func RefByID(id string) UserRef {
	return UserRef{ID: id}
}

// RefByUser references a fully resolved user.
func RefByUser(u User) UserRef {
	return UserRef{ID: u.ID, User: &u}
}

// Reduced strips the resolved profile, keeping only the identifier. Tokens
// embed reduced references to stay small.
func (r UserRef) Reduced() UserRef {
	return UserRef{ID: r.ID}
}

// Resolved reports whether the full profile is present.
func (r UserRef) Resolved() bool {
	return r.User != nil
}
