package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollsBackEveryRepository(t *testing.T) {
	store := NewStore(testutil.OpenDB(t))
	ctx := context.Background()
	p := newProduct(t, store, "Glue", "2", 5, 0)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		oldQty, newQty, err := tx.Products.DecrementQuantity(ctx, p.ID, 2)
		require.NoError(t, err)
		require.NoError(t, tx.Ledger.Record(ctx, &domain.StockHistory{
			ProductID: p.ID, OldQuantity: oldQty, NewQuantity: newQty, ChangeType: domain.ChangeTypeSale,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	n, err := store.Ledger.CountByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLedgerRecordDerivesChange(t *testing.T) {
	store := NewStore(testutil.OpenDB(t))
	ctx := context.Background()

	entry := &domain.StockHistory{ProductID: 1, OldQuantity: 7, NewQuantity: 2, Change: 100, ChangeType: domain.ChangeTypeManualUpdate}
	require.NoError(t, store.Ledger.Record(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.Equal(t, -5, entry.Change)

	rows, total, err := store.Ledger.ListByProduct(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, -5, rows[0].Change)
}

func TestBucketUpsertOverwrites(t *testing.T) {
	store := NewStore(testutil.OpenDB(t))
	ctx := context.Background()

	bucket, err := store.Buckets.GetOrCreate(ctx, 3)
	require.NoError(t, err)
	again, err := store.Buckets.GetOrCreate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, bucket.ID, again.ID)

	created, err := store.Buckets.UpsertItem(ctx, bucket.ID, 10, 20, 2)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.Buckets.UpsertItem(ctx, bucket.ID, 10, 20, 3)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.Buckets.GetWithItems(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	none, err := store.Buckets.GetWithItems(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, none)

	n, err := store.Buckets.ClearItems(ctx, bucket.ID, []int64{})
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = store.Buckets.ClearItems(ctx, bucket.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBucketItemsFollowCreationTime(t *testing.T) {
	db := testutil.OpenDB(t)
	store := NewStore(db)
	ctx := context.Background()

	bucket, err := store.Buckets.GetOrCreate(ctx, 5)
	require.NoError(t, err)
	// the later line carries the smaller id, as it would coming from another node
	first := time.Now().Add(-time.Minute)
	require.NoError(t, db.Create(&domain.BucketItem{ID: 900, BucketID: bucket.ID, ProductID: 1, ShopID: 1, Quantity: 1, CreatedAt: first}).Error)
	require.NoError(t, db.Create(&domain.BucketItem{ID: 100, BucketID: bucket.ID, ProductID: 2, ShopID: 1, Quantity: 1, CreatedAt: first.Add(time.Second)}).Error)

	got, err := store.Buckets.GetWithItems(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.EqualValues(t, 900, got.Items[0].ID)
	assert.EqualValues(t, 100, got.Items[1].ID)

	// overwriting a quantity keeps the line in place
	created, err := store.Buckets.UpsertItem(ctx, bucket.ID, 1, 1, 4)
	require.NoError(t, err)
	assert.False(t, created)
	got, err = store.Buckets.GetWithItems(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 900, got.Items[0].ID)
	assert.Equal(t, 4, got.Items[0].Quantity)
}

func TestBucketUpsertConcurrentAdds(t *testing.T) {
	store := NewStore(testutil.OpenDB(t))
	ctx := context.Background()

	bucket, err := store.Buckets.GetOrCreate(ctx, 6)
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		created int32
		errs    = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			ok, err := store.Buckets.UpsertItem(ctx, bucket.ID, 10, 20, qty)
			if err != nil {
				errs <- err
				return
			}
			if ok {
				atomic.AddInt32(&created, 1)
			}
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, created)

	got, err := store.Buckets.GetWithItems(ctx, 6)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
}
