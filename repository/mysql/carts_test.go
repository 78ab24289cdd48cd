package mysql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/repository"
)

func TestSetItemQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta("UPDATE cart_items SET quantity = ? WHERE id = ?")
	// With clientFoundRows the server counts a matched row even when the
	// quantity is already the one being written.
	mock.ExpectExec(query).WithArgs(2, int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(2, int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))

	carts := NewCartRepository(db)
	require.NoError(t, carts.SetItemQuantity(context.Background(), 5, 2))
	assert.ErrorIs(t, carts.SetItemQuantity(context.Background(), 6, 2), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
