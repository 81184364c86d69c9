package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repository.UserRepository      = (*Users)(nil)
	_ repository.InventoryRepository = (*Inventory)(nil)
	_ repository.AuditRepository     = (*Audit)(nil)
)

func TestUsers_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Username: "alice", PwdHash: []byte("h"), Active: true}
	require.NoError(t, s.Create(ctx, a))
	require.ErrorIs(t, s.Create(ctx, &model.Account{Username: "alice"}), errs.ErrAlreadyExists)

	got, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PwdHash[0] = 'X'
	again, _ := s.GetByUsername(ctx, "alice")
	require.Equal(t, []byte("h"), again.PwdHash, "store must hand out copies")

	_, err = s.GetByUsername(ctx, "Alice")
	require.ErrorIs(t, err, errs.ErrNotFound)

	now := time.Now().UTC()
	until := now.Add(time.Hour)
	failed, locked, err := s.RecordFailure(ctx, a.ID, 2, until)
	require.NoError(t, err)
	require.Equal(t, 1, failed)
	require.Nil(t, locked)
	failed, locked, err = s.RecordFailure(ctx, a.ID, 2, until)
	require.NoError(t, err)
	require.Equal(t, 2, failed)
	require.True(t, until.Equal(*locked))

	// an active lock is kept as is
	_, locked, err = s.RecordFailure(ctx, a.ID, 2, until.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, until.Equal(*locked))

	ok, err := s.RecordSuccess(ctx, a.ID, now)
	require.NoError(t, err)
	require.False(t, ok, "success must not clear an active lock")

	require.NoError(t, s.ClearExpiredLock(ctx, a.ID, now))
	got, _ = s.GetByUsername(ctx, "alice")
	require.Equal(t, 3, got.FailedAttempts, "lock not yet expired")

	require.NoError(t, s.ClearExpiredLock(ctx, a.ID, until))
	got, _ = s.GetByUsername(ctx, "alice")
	require.Equal(t, 0, got.FailedAttempts)
	require.Nil(t, got.LockedUntil)

	require.NoError(t, s.UpdatePassword(ctx, a.ID, []byte("h2"), []byte("s2")))
	ok, err = s.RecordSuccess(ctx, a.ID, until)
	require.NoError(t, err)
	require.True(t, ok)
	got, _ = s.GetByUsername(ctx, "alice")
	require.Equal(t, []byte("h2"), got.PwdHash)
	require.NotNil(t, got.LastLogin)

	_, err = s.RecordSuccess(ctx, uuid.Must(uuid.NewV4()), until)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUsers_RecordFailure_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	a := &model.Account{ID: uuid.Must(uuid.NewV4()), Username: "alice", Active: true}
	require.NoError(t, s.Create(ctx, a))
	until := time.Now().Add(30 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.RecordFailure(ctx, a.ID, 5, until)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 20, got.FailedAttempts)
	require.NotNil(t, got.LockedUntil)
}

func TestInventory_ApplyMovement_ConcurrentDeltasSum(t *testing.T) {
	ctx := context.Background()
	s := NewInventory()
	require.NoError(t, s.CreateItem(ctx, &model.InventoryItem{ItemCode: "AUTO-001", QuantityOnHand: 100, UnitPrice: decimal.NewFromInt(1)}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := model.MovementReceive
			if i%2 == 0 {
				typ = model.MovementIssue
			}
			mv := &model.StockMovement{ID: uuid.Must(uuid.NewV7()), ItemCode: "AUTO-001", Type: typ, Quantity: 3}
			_, err := s.ApplyMovement(ctx, mv, typ.Delta(3))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	it, err := s.GetItem(ctx, "AUTO-001")
	require.NoError(t, err)
	require.Equal(t, int64(100), it.QuantityOnHand)

	list, err := s.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 50)
}

func TestInventory_UnknownItemWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewInventory()
	_, err := s.ApplyMovement(ctx, &model.StockMovement{ItemCode: "NOPE", Quantity: 1}, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
	list, _ := s.ListMovements(ctx)
	require.Empty(t, list)
}

func TestInventory_ListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewInventory()
	for _, code := range []string{"B", "A", "C"} {
		require.NoError(t, s.CreateItem(ctx, &model.InventoryItem{ItemCode: code}))
	}
	require.ErrorIs(t, s.CreateItem(ctx, &model.InventoryItem{ItemCode: "A"}), errs.ErrAlreadyExists)

	items, _ := s.ListItems(ctx)
	require.Equal(t, "A", items[0].ItemCode)
	require.Equal(t, "C", items[2].ItemCode)

	for _, ref := range []string{"first", "second"} {
		_, err := s.ApplyMovement(ctx, &model.StockMovement{ItemCode: "A", Type: model.MovementReceive, Quantity: 1, Reference: ref}, 1)
		require.NoError(t, err)
	}
	list, _ := s.ListMovements(ctx)
	require.Equal(t, "second", list[0].Reference)
	require.Equal(t, "first", list[1].Reference)
}

func TestAudit_ListByUsername(t *testing.T) {
	ctx := context.Background()
	a := NewAudit()
	require.NoError(t, a.Append(ctx, model.AuditEvent{Username: "alice", Kind: model.AuditLoginFailed}))
	require.NoError(t, a.Append(ctx, model.AuditEvent{Username: "bob", Kind: model.AuditLoginSuccess}))
	require.NoError(t, a.Append(ctx, model.AuditEvent{Username: "alice", Kind: model.AuditLoginSuccess}))

	got, _ := a.ListByUsername(ctx, "alice", 0)
	require.Len(t, got, 2)
	require.Equal(t, model.AuditLoginSuccess, got[0].Kind)

	all, _ := a.ListByUsername(ctx, "", 2)
	require.Len(t, all, 2)
	require.Len(t, a.Events(), 3)
}
