package models

const (
	DefaultListLimit = 100
	MaxListLimit     = 100

	OrderAsc  = "asc"
	OrderDesc = "desc"

	OrderByCreatedAt = "created_at"
	OrderByStartTime = "start_time"
	OrderByName      = "name"
)

// ListRequest is the body of POST /database/events/list. A nil UserID lists
// events of every organizer. AfterID and BeforeID bound the result by the
// OrderBy value of the named event, which must exist.
type ListRequest struct {
	UserID   *string `json:"user_id"`
	Limit    int     `json:"limit" validate:"min=0,max=100"`
	Order    string  `json:"order" validate:"omitempty,oneof=asc desc"`
	OrderBy  string  `json:"order_by" validate:"omitempty,oneof=created_at start_time name"`
	AfterID  string  `json:"after_id"`
	BeforeID string  `json:"before_id"`
}

// Normalize fills the defaults: 100 items, newest first by created_at.
func (r *ListRequest) Normalize() {
	if r.Limit == 0 {
		r.Limit = DefaultListLimit
	}
	if r.Order == "" {
		r.Order = OrderDesc
	}
	if r.OrderBy == "" {
		r.OrderBy = OrderByCreatedAt
	}
	if r.UserID != nil && *r.UserID == "" {
		r.UserID = nil
	}
}
