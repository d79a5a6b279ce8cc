// Package models defines the client-side data shapes for the login core.
package models

// User is the authenticated identity, owned by the session controller for
// the lifetime of the session. It never carries the password.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// Session is the payload persisted (encrypted) between runs: the user plus
// the signed token pair.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
