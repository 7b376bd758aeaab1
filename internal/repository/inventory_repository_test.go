package repository

import (
	"context"
	"testing"

	apperrors "go-ticket-reservation/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryHold_GuardRejectsOverHold(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewInventoryRepository(testDB)
	id := createTestInventoryRow(t, 100, "general", 2500, 5)

	tx := beginTestTx(t)
	require.NoError(t, repo.Hold(ctx, tx, id, 3))
	require.NoError(t, repo.Hold(ctx, tx, id, 2))

	err := repo.Hold(ctx, tx, id, 1)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	require.NoError(t, tx.Commit(ctx))

	inv, err := repo.FindByEventAndType(ctx, 100, "general")
	require.NoError(t, err)
	assert.Equal(t, 5, inv.ReservedCount)
	assert.Equal(t, 0, inv.Available())
}

func TestInventoryCommitSold_MovesHoldToSold(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewInventoryRepository(testDB)
	id := createTestInventoryRow(t, 100, "general", 2500, 5)

	tx := beginTestTx(t)
	require.NoError(t, repo.Hold(ctx, tx, id, 2))
	require.NoError(t, repo.CommitSold(ctx, tx, id, 2))
	require.NoError(t, tx.Commit(ctx))

	inv, err := repo.FindByEventAndType(ctx, 100, "general")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.ReservedCount)
	assert.Equal(t, 2, inv.SoldCount)
	assert.Equal(t, 3, inv.Available())
}

// Converting or releasing more than is held must never drive reserved_count
// negative, even when called without a prior hold.
func TestInventoryGuards_RejectUnderflow(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewInventoryRepository(testDB)
	id := createTestInventoryRow(t, 100, "general", 2500, 5)

	tx := beginTestTx(t)
	assert.ErrorIs(t, repo.CommitSold(ctx, tx, id, 1), apperrors.ErrInventoryConflict)
	assert.ErrorIs(t, repo.ReleaseHold(ctx, tx, id, 1), apperrors.ErrInventoryConflict)
}

func TestInventoryFind_UnknownTypeNotFound(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewInventoryRepository(testDB)
	createTestInventoryRow(t, 100, "vip", 9900, 10)

	_, err := repo.FindByEventAndType(ctx, 100, "general")
	assert.ErrorIs(t, err, apperrors.ErrInventoryNotFound)

	inventories, err := repo.ListByEvent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, inventories, 1)
	assert.Equal(t, "vip", inventories[0].TicketType)
}
