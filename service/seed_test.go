package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/book-inventory/backend/models"
	"github.com/kevinaaaquil/book-inventory/backend/service"
	"github.com/kevinaaaquil/book-inventory/backend/store"
)

func Test_EnsureAdmin(t *testing.T) {
	service.PasswordCost = 4
	ctx := context.Background()
	mem := store.NewMemory()

	admin, err := service.EnsureAdmin(ctx, mem, "admin", "Administrator", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, service.CheckPassword(admin.Password, "admin123"))

	again, err := service.EnsureAdmin(ctx, mem, "admin", "Someone Else", "different")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.Equal(t, "Administrator", again.Name)

	n, err := mem.UsersCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func Test_SeedSampleBooks(t *testing.T) {
	service.PasswordCost = 4
	ctx := context.Background()
	mem := store.NewMemory()
	admin, err := service.EnsureAdmin(ctx, mem, "admin", "Administrator", "admin123")
	require.NoError(t, err)

	n, err := service.SeedSampleBooks(ctx, mem, admin)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = service.SeedSampleBooks(ctx, mem, admin)
	require.NoError(t, err)
	assert.Zero(t, n, "second run leaves a populated collection alone")

	stats, err := mem.BookStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, stats.Total)
	assert.EqualValues(t, 3, stats.ByCategory[models.CategoryFiction])
	assert.EqualValues(t, 3, stats.ByStatus[models.StatusBorrowed])
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusDamaged])

	page, _, err := mem.ListBooks(ctx, models.BookQuery{
		Filter: models.BookFilter{Search: "gatsby"},
		Sort:   models.DefaultBookSort,
		Page:   models.PageRequest{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, admin.ID, page[0].CreatedBy)
	assert.Equal(t, 87.5, page[0].ValueChangePercentage())
}
