// Package events stores food-sharing events for the backend.
package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
)

// Repository persists events. Unknown ids yield common.ErrNotFound.
// List expects a normalized request whose cursor ids exist.
type Repository interface {
	Create(ctx context.Context, events []models.Event) error
	Get(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, e models.Event) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req models.ListRequest) ([]models.Event, error)
}

// orderColumns whitelists the sortable columns.
var orderColumns = map[string]string{
	models.OrderByCreatedAt: "created_at",
	models.OrderByStartTime: "start_time",
	models.OrderByName:      "name",
}

func orderColumn(orderBy string) (string, error) {
	col, ok := orderColumns[orderBy]
	if !ok {
		return "", fmt.Errorf("%w: cannot order by %q", common.ErrValidation, orderBy)
	}
	return col, nil
}
