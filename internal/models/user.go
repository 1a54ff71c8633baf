// Package models provides data model definitions for the GrowEasy backend.
package models

import "time"

// User is a member profile keyed by UserID.
// A second write with the same UserID replaces every field.
type User struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	GroupName string    `db:"group_name" json:"group_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}
