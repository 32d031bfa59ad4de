package models

// User is the authenticated identity as confirmed by the backend.
type User struct {
	UserID    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
	Preferences
}

// PreferencesUpdate is the body of the preference save request: the four
// booleans plus the owner id.
type PreferencesUpdate struct {
	Preferences
	UserID string `json:"user_id"`
}
