// Package models holds the records the backend stores and serves.
package models

// Preferences are the dietary flags shared by users and events.
type Preferences struct {
	IsVegan      bool `json:"is_vegan"`
	IsHalal      bool `json:"is_halal"`
	IsVegetarian bool `json:"is_vegetarian"`
	IsGlutenFree bool `json:"is_gluten_free"`
}

// User is keyed by the login name. PasswordHash never leaves the server.
type User struct {
	UserID       string `json:"user_id"`
	CreatedAt    int64  `json:"created_at"`
	PasswordHash []byte `json:"-"`
	Preferences
}

// PreferencesUpdate is the body of PUT /database/users/{id}.
type PreferencesUpdate struct {
	Preferences
	UserID string `json:"user_id"`
}
