package types

import "time"

type UserType string

const (
	UserTypeFarmer UserType = "farmer"
	UserTypeAdmin  UserType = "admin"
)

type User struct {
	ID         string    `db:"id"`
	UserType   *string   `db:"user_type"`
	Email      *string   `db:"email"`
	GivenName  *string   `db:"given_name"`
	FamilyName *string   `db:"family_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Identity is who a verified token says the caller is.
type Identity struct {
	UserID string
	Email  string
	Groups []string
}

func (i *Identity) InGroup(group string) bool {
	for _, g := range i.Groups {
		if g == group {
			return true
		}
	}
	return false
}
