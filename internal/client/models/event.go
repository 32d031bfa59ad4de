package models

// Event is a food-sharing event. An empty ID marks a draft that the
// backend has not created yet.
type Event struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CreatedAt   int64   `json:"created_at"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Preferences
}

func (e Event) IsDraft() bool {
	return e.ID == ""
}

// ListQuery is the list request sent to the backend. An empty UserID lists
// every visible event; otherwise the list is scoped to one organizer.
type ListQuery struct {
	Limit   int    `json:"limit"`
	Order   string `json:"order"`
	OrderBy string `json:"order_by"`
	UserID  string `json:"user_id,omitempty"`
}

const (
	DefaultListLimit = 100
	OrderAsc         = "asc"
	OrderDesc        = "desc"
	OrderByCreatedAt = "created_at"
)
