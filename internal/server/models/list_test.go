package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListRequest_Normalize(t *testing.T) {
	empty := ""
	r := ListRequest{UserID: &empty}
	r.Normalize()

	assert.Equal(t, ListRequest{Limit: 100, Order: OrderDesc, OrderBy: OrderByCreatedAt}, r)

	owner := "student"
	r = ListRequest{UserID: &owner, Limit: 5, Order: OrderAsc, OrderBy: OrderByName}
	r.Normalize()
	assert.Equal(t, "student", *r.UserID)
	assert.Equal(t, 5, r.Limit)
	assert.Equal(t, OrderAsc, r.Order)
	assert.Equal(t, OrderByName, r.OrderBy)
}
