// Package models defines the core data structures for users and
// email account records.
package models

import "time"

// User represents an application identity with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name of the user.
	Username string `json:"username"`
	// Password is the plaintext password, held in memory only.
	Password string `json:"password"`
}

// EmailAccount is a bookkeeping entry for one email address: the
// address, its password, and the free-text usage labels attached to
// it ("Netflix", "Work", ...). The password lives in memory in
// plaintext and is never persisted unencoded.
type EmailAccount struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id"`
	// Email is the address as the user typed it. Not validated.
	Email string `json:"email"`
	// Password is the plaintext secret for the address.
	Password string `json:"password"`
	// Uses holds usage labels in insertion order. Duplicates allowed.
	Uses []string `json:"uses"`
	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is refreshed on every mutation of the record.
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmailAccountUpdate carries the fields of a partial update. Nil
// fields are left untouched by the merge.
type EmailAccountUpdate struct {
	Email    *string   `json:"email,omitempty"`
	Password *string   `json:"password,omitempty"`
	Uses     *[]string `json:"uses,omitempty"`
}
