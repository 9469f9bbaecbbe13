package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the two roles the panel knows.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User models a panel account. The Password field always holds a bcrypt
// hash after the startup migration has run; the JSON key is part of the
// persisted document format and must not change.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

// Session is the record stored against an issued token. Tokens never
// expire; a session lives until it is explicitly revoked or the document
// is reset.
type Session struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// IsAdmin reports whether the session belongs to an admin account.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
