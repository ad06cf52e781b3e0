package auth

import "github.com/geocoder89/recipehub/internal/domain/user"

// Principal is the identity attached to a request once its artifact has been
// verified. It is a snapshot taken when the artifact was issued: a later
// change to the user's admin flag is not visible until the user logs in again.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Anonymous is the principal optional authentication resolves to when no
// valid artifact was presented.
var Anonymous = Principal{}

func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

// FromUser projects a stored user onto the principal shape.
func FromUser(u user.User) Principal {
	return Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}
