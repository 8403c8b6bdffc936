package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgeward/realmcore/internal/fieldmap"
	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/packet"
)

// CharacterRepository persists character snapshots: the field map plus
// inventory, in the wire shape C9's CharacterSave/CharacterJoin messages
// carry (field map as {fieldCount:u16,[{id:u16,value:u32}]}, inventory as
// {itemCount:u16,[{entry,slot,stack,creator,contained,durability,
// randomProps,randomSuffix}]}). A character's row IS its save file; there
// is no separate relational schema to keep in sync.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

// EncodeFields writes {fieldCount:u16,[{id:u16,value:u32}]} for every
// non-zero cell. Cells left at zero are omitted — a fresh FieldMap of the
// same size reconstructs them as zero on load, which is what "non-zero
// sparse snapshot" means here.
func EncodeFields(fields *fieldmap.FieldMap) []byte {
	w := packet.NewWriter(256)
	var count int16
	body := packet.NewWriter(256)
	for id := 0; id < fields.Len(); id++ {
		v := fields.GetCell(id)
		if v == 0 {
			continue
		}
		body.WriteShort(int16(id))
		body.WriteInt(int32(v))
		count++
	}
	w.WriteShort(count)
	w.WriteBytes(body.Bytes())
	return w.Bytes()
}

// DecodeFieldsInto reads the blob produced by EncodeFields back into an
// already-allocated, correctly-sized field map.
func DecodeFieldsInto(data []byte, fields *fieldmap.FieldMap) error {
	r := packet.NewReader(data)
	count, err := r.ReadShort()
	if err != nil {
		return fmt.Errorf("decoding field count: %w", err)
	}
	for i := int16(0); i < count; i++ {
		id, err := r.ReadShort()
		if err != nil {
			return fmt.Errorf("decoding field id %d: %w", i, err)
		}
		v, err := r.ReadInt()
		if err != nil {
			return fmt.Errorf("decoding field value %d: %w", i, err)
		}
		fields.SetCell(int(id), uint32(v), false)
	}
	return nil
}

// ItemRow is the on-wire shape of one inventory entry, matching §6 exactly.
type ItemRow struct {
	Entry        uint32
	Slot         uint16
	Stack        uint16
	Creator      uint64
	Contained    uint64
	Durability   uint32
	RandomProps  uint16
	RandomSuffix uint16
}

// EncodeInventory writes {itemCount:u16,[ItemRow]} for every occupied
// body-bag slot. Sub-bag contents are not yet walked (see DESIGN.md).
func EncodeInventory(inv *model.Inventory) []byte {
	var rows []ItemRow
	inv.ForEachBodyItem(func(addr model.SlotAddress, item *model.Item) {
		rows = append(rows, ItemRow{
			Entry:      item.GUID().Entry(),
			Slot:       uint16(addr),
			Stack:      uint16(item.StackCount()),
			Creator:    uint64(item.Owner()),
			Contained:  uint64(item.Contained()),
			Durability: uint32(item.Durability()),
		})
	})

	w := packet.NewWriter(64 + len(rows)*32)
	w.WriteShort(int16(len(rows)))
	for _, row := range rows {
		w.WriteInt(int32(row.Entry))
		w.WriteShort(int16(row.Slot))
		w.WriteShort(int16(row.Stack))
		w.WriteLong(int64(row.Creator))
		w.WriteLong(int64(row.Contained))
		w.WriteInt(int32(row.Durability))
		w.WriteShort(int16(row.RandomProps))
		w.WriteShort(int16(row.RandomSuffix))
	}
	return w.Bytes()
}

// DecodeInventoryRows parses the blob written by EncodeInventory. Rebuilding
// *model.Item values (which need fresh GUIDs from the owning instance's
// IDGenerator) is the caller's job — this just exposes the wire rows.
func DecodeInventoryRows(data []byte) ([]ItemRow, error) {
	r := packet.NewReader(data)
	count, err := r.ReadShort()
	if err != nil {
		return nil, fmt.Errorf("decoding item count: %w", err)
	}
	rows := make([]ItemRow, 0, count)
	for i := int16(0); i < count; i++ {
		entry, err := r.ReadInt()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d entry: %w", i, err)
		}
		slot, err := r.ReadShort()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d slot: %w", i, err)
		}
		stack, err := r.ReadShort()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d stack: %w", i, err)
		}
		creator, err := r.ReadLong()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d creator: %w", i, err)
		}
		contained, err := r.ReadLong()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d contained: %w", i, err)
		}
		durability, err := r.ReadInt()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d durability: %w", i, err)
		}
		randomProps, err := r.ReadShort()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d random props: %w", i, err)
		}
		randomSuffix, err := r.ReadShort()
		if err != nil {
			return nil, fmt.Errorf("decoding item %d random suffix: %w", i, err)
		}
		rows = append(rows, ItemRow{
			Entry:        uint32(entry),
			Slot:         uint16(slot),
			Stack:        uint16(stack),
			Creator:      uint64(creator),
			Contained:    uint64(contained),
			Durability:   uint32(durability),
			RandomProps:  uint16(randomProps),
			RandomSuffix: uint16(randomSuffix),
		})
	}
	return rows, nil
}

// Save upserts a character's row from its live in-instance state.
func (r *CharacterRepository) Save(ctx context.Context, accountID int64, charGUID model.GUID, mapID uint32, pos model.Vector3, fieldsBlob, itemsBlob []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO characters (char_guid, account_id, map_id, pos_x, pos_y, pos_z, fields_blob, items_blob, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (char_guid) DO UPDATE SET
			map_id = EXCLUDED.map_id,
			pos_x = EXCLUDED.pos_x, pos_y = EXCLUDED.pos_y, pos_z = EXCLUDED.pos_z,
			fields_blob = EXCLUDED.fields_blob, items_blob = EXCLUDED.items_blob,
			updated_at = now()
	`, int64(charGUID), accountID, mapID, pos.X, pos.Y, pos.Z, fieldsBlob, itemsBlob)
	if err != nil {
		return fmt.Errorf("saving character %s: %w", charGUID, err)
	}
	return nil
}

// Row is the raw persisted row for a character, before the caller
// reconstructs live model types from its blobs.
type Row struct {
	AccountID  int64
	MapID      uint32
	Pos        model.Vector3
	FieldsBlob []byte
	ItemsBlob  []byte
}

// Load fetches a character's persisted row. Returns (Row{}, false, nil) if
// the character has never been saved.
func (r *CharacterRepository) Load(ctx context.Context, charGUID model.GUID) (Row, bool, error) {
	var row Row
	var mapID int32
	err := r.pool.QueryRow(ctx, `
		SELECT account_id, map_id, pos_x, pos_y, pos_z, fields_blob, items_blob
		FROM characters WHERE char_guid = $1
	`, int64(charGUID)).Scan(&row.AccountID, &mapID, &row.Pos.X, &row.Pos.Y, &row.Pos.Z, &row.FieldsBlob, &row.ItemsBlob)
	if err == pgx.ErrNoRows {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("loading character %s: %w", charGUID, err)
	}
	row.MapID = uint32(mapID)
	return row, true, nil
}
