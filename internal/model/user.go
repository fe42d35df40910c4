package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The membership and recommendation code only ever needs the ID;
// the remaining fields serve the auth endpoints.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique display handle.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
