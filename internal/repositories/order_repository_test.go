package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/internal/models"
)

// fakeQueryer records the SQL it is handed and serves a canned row.
type fakeQueryer struct {
	lastSQL string
	row     pgx.Row
}

func (q *fakeQueryer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *fakeQueryer) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	return nil, pgx.ErrNoRows
}

func (q *fakeQueryer) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	return q.row
}

type orderRow struct {
	order models.Order
	err   error
}

func (r orderRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.order.ID
	*dest[1].(*string) = r.order.OrderNumber
	*dest[2].(*int64) = r.order.AgencyID
	*dest[3].(*models.OrderStatus) = r.order.Status
	*dest[4].(*int64) = r.order.TotalPoints
	*dest[5].(*time.Time) = r.order.CreatedAt
	*dest[6].(*time.Time) = r.order.UpdatedAt
	return nil
}

// The cancellation path depends on this read actually locking the row:
// without FOR UPDATE two concurrent cancels both see CONFIRMED and
// both write the compensating credit.
func TestGetForUpdateLocksRow(t *testing.T) {
	want := models.Order{
		ID: 3, OrderNumber: "ORD-AB12CD34", AgencyID: 7,
		Status: models.OrderStatusConfirmed, TotalPoints: 500,
	}
	q := &fakeQueryer{row: orderRow{order: want}}

	repo := &OrderRepository{}
	got, err := repo.GetForUpdate(context.Background(), q, 3)
	require.NoError(t, err)

	assert.Contains(t, q.lastSQL, "FOR UPDATE")
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.AgencyID, got.AgencyID)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Equal(t, int64(500), got.TotalPoints)
}

func TestGetForUpdateMissingOrder(t *testing.T) {
	q := &fakeQueryer{row: orderRow{err: pgx.ErrNoRows}}

	repo := &OrderRepository{}
	_, err := repo.GetForUpdate(context.Background(), q, 99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
