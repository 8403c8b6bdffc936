package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeward/realmcore/internal/fieldmap"
	"github.com/forgeward/realmcore/internal/model"
)

func TestEncodeDecodeFieldsSkipsZeroCells(t *testing.T) {
	src := fieldmap.NewFieldMap(8)
	src.SetCell(1, 42, false)
	src.SetCell(5, 7, false)

	blob := EncodeFields(src)

	dst := fieldmap.NewFieldMap(8)
	require.NoError(t, DecodeFieldsInto(blob, dst))
	assert.Equal(t, uint32(42), dst.GetCell(1))
	assert.Equal(t, uint32(7), dst.GetCell(5))
	assert.Equal(t, uint32(0), dst.GetCell(0))
}

func TestEncodeInventoryRoundTrip(t *testing.T) {
	inv := model.NewInventory(model.NewGUID(model.KindPlayer, 0, 1))
	tmpl := &model.ItemTemplate{Entry: 57, InvType: model.InvTypeNone, MaxStack: 99}
	items, result := inv.CreateItems(tmpl, 3, func() uint32 { return 1001 })
	require.Equal(t, model.ResultOk, result)
	require.Len(t, items, 1)
	items[0].SetDurability(60)
	items[0].SetOwner(model.NewGUID(model.KindPlayer, 0, 1))

	blob := EncodeInventory(inv)
	rows, err := DecodeInventoryRows(blob)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint32(57), rows[0].Entry)
	assert.Equal(t, uint16(3), rows[0].Stack)
	assert.Equal(t, uint32(60), rows[0].Durability)
	assert.Equal(t, uint64(model.NewGUID(model.KindPlayer, 0, 1)), rows[0].Creator)
}

func TestCharacterRepositorySaveLoadRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	accRepo := &DB{pool: pool}
	acc, err := accRepo.GetOrCreateAccount(ctx, "tester")
	require.NoError(t, err)

	repo := NewCharacterRepository(pool)
	charGUID := model.NewGUID(model.KindPlayer, 0, 12345)
	pos := model.Vector3{X: 1, Y: 2, Z: 3}

	fields := fieldmap.NewFieldMap(16)
	fields.SetCell(2, 99, false)
	fieldsBlob := EncodeFields(fields)

	inv := model.NewInventory(charGUID)
	itemsBlob := EncodeInventory(inv)

	require.NoError(t, repo.Save(ctx, acc.ID, charGUID, 1, pos, fieldsBlob, itemsBlob))

	row, ok, err := repo.Load(ctx, charGUID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, acc.ID, row.AccountID)
	assert.Equal(t, uint32(1), row.MapID)
	assert.Equal(t, pos, row.Pos)

	loaded := fieldmap.NewFieldMap(16)
	require.NoError(t, DecodeFieldsInto(row.FieldsBlob, loaded))
	assert.Equal(t, uint32(99), loaded.GetCell(2))
}

func TestCharacterRepositoryLoadMissingReturnsNotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewCharacterRepository(pool)
	_, ok, err := repo.Load(context.Background(), model.NewGUID(model.KindPlayer, 0, 99999))
	require.NoError(t, err)
	assert.False(t, ok)
}
