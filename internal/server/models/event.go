package models

// Event is a food-sharing event. ID, UserID and CreatedAt are assigned by
// the server; whatever the client sends for them on create is ignored.
type Event struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CreatedAt   int64   `json:"created_at"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=4000"`
	Location    string  `json:"location" validate:"max=200"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	StartTime   string  `json:"start_time" validate:"max=64"`
	EndTime     string  `json:"end_time" validate:"max=64"`
	Preferences
}
