package model

// User is the authenticated operator as reported by the remote /auth/me
// endpoint. Not persisted as a local collection — cached via the KV store for
// offline unlock.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"` // admin | cashier
}
