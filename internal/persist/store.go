// Package persist is the companion's durable state layer: a sqlite-backed
// store (via modernc.org/sqlite, a pure-Go driver, so the binary stays
// CGO-free) that survives the companion entity being unloaded and
// reloaded. It plays the role internal/storage plays for the teacher's
// agent/channel records, scoped down to one table per companion concern.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/world"
)

// ErrNotFound is returned when a load finds no row for the given owner.
var ErrNotFound = errors.New("persist: not found")

// Store is a sqlite-backed companion store. A Store is safe for concurrent
// use by multiple goroutines; the standard library connection pool and
// sqlite's own locking provide the necessary serialization.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS companions (
	owner_id   TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	entity     TEXT NOT NULL,
	pos_x      INTEGER NOT NULL,
	pos_y      INTEGER NOT NULL,
	pos_z      INTEGER NOT NULL,
	health     REAL NOT NULL,
	behavior   INTEGER NOT NULL,
	slots      INTEGER NOT NULL,
	inventory  TEXT NOT NULL,
	equipped   TEXT NOT NULL,
	tagged     TEXT NOT NULL,
	home_area  TEXT,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS memories (
	owner_id   TEXT NOT NULL,
	position   INTEGER NOT NULL,
	fact       TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (owner_id, position)
);
`

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists. path may be ":memory:" for tests.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "companion.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite: one writer at a time keeps this simple
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type equippedEntry struct {
	Slot  companion.EquipSlot `json:"slot"`
	Stack world.ItemStack     `json:"stack"`
}

type taggedEntry struct {
	Pos  world.Pos           `json:"pos"`
	Role companion.BlockRole `json:"role"`
}

// SaveCompanion upserts c's full snapshot: position, health, behavior,
// inventory contents, equipped gear, tagged blocks, and home area.
func (s *Store) SaveCompanion(ctx context.Context, c *companion.Companion) error {
	invJSON, err := json.Marshal(c.Inventory.Snapshot())
	if err != nil {
		return fmt.Errorf("persist: marshal inventory: %w", err)
	}

	equipped := make([]equippedEntry, 0, len(c.Equipped))
	for slot, stack := range c.Equipped {
		if stack.Count == 0 {
			continue
		}
		equipped = append(equipped, equippedEntry{Slot: slot, Stack: stack})
	}
	equipJSON, err := json.Marshal(equipped)
	if err != nil {
		return fmt.Errorf("persist: marshal equipped: %w", err)
	}

	tagged := make([]taggedEntry, 0, len(c.TaggedBlocks))
	for _, tb := range c.TaggedBlocks {
		tagged = append(tagged, taggedEntry{Pos: tb.Pos, Role: tb.Role})
	}
	taggedJSON, err := json.Marshal(tagged)
	if err != nil {
		return fmt.Errorf("persist: marshal tagged blocks: %w", err)
	}

	var homeJSON sql.NullString
	if c.HomeArea != nil {
		b, err := json.Marshal(c.HomeArea)
		if err != nil {
			return fmt.Errorf("persist: marshal home area: %w", err)
		}
		homeJSON = sql.NullString{String: string(b), Valid: true}
	}

	slots := len(c.Inventory.Snapshot())
	if slots == 0 {
		slots = 36
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companions (owner_id, name, entity, pos_x, pos_y, pos_z, health, behavior, slots, inventory, equipped, tagged, home_area, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(owner_id) DO UPDATE SET
			name = excluded.name, entity = excluded.entity,
			pos_x = excluded.pos_x, pos_y = excluded.pos_y, pos_z = excluded.pos_z,
			health = excluded.health, behavior = excluded.behavior,
			inventory = excluded.inventory, equipped = excluded.equipped,
			tagged = excluded.tagged, home_area = excluded.home_area,
			updated_at = datetime('now')`,
		c.OwnerID, c.Name, string(c.Entity),
		c.Position.X, c.Position.Y, c.Position.Z,
		c.HealthFraction(), int(c.Behavior), slots,
		string(invJSON), string(equipJSON), string(taggedJSON), homeJSON,
	)
	if err != nil {
		return fmt.Errorf("persist: save companion %s: %w", c.OwnerID, err)
	}
	return nil
}

// LoadCompanion reconstructs the companion previously saved for ownerID.
// Inventory contents are restored by replaying each saved stack through
// Inventory.Add, so exact slot indices are not guaranteed to match the
// pre-save layout — only item identities and counts are.
func (s *Store) LoadCompanion(ctx context.Context, ownerID string) (*companion.Companion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, entity, pos_x, pos_y, pos_z, health, behavior, slots, inventory, equipped, tagged, home_area
		FROM companions WHERE owner_id = ?`, ownerID)

	var (
		name, entity                 string
		posX, posY, posZ, behavior   int
		slots                        int
		health                       float64
		invJSON, equipJSON, tagJSON  string
		homeJSON                     sql.NullString
	)
	if err := row.Scan(&name, &entity, &posX, &posY, &posZ, &health, &behavior, &slots, &invJSON, &equipJSON, &tagJSON, &homeJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("persist: load companion %s: %w", ownerID, err)
	}

	c := companion.New(name, ownerID, world.EntityID(entity), slots)
	c.Position = world.Pos{X: posX, Y: posY, Z: posZ}
	c.SetHealth(health)
	c.Behavior = companion.BehaviorMode(behavior)

	var stacks []world.ItemStack
	if err := json.Unmarshal([]byte(invJSON), &stacks); err != nil {
		return nil, fmt.Errorf("persist: unmarshal inventory: %w", err)
	}
	for _, stack := range stacks {
		c.Inventory.Add(stack)
	}

	var equipped []equippedEntry
	if err := json.Unmarshal([]byte(equipJSON), &equipped); err != nil {
		return nil, fmt.Errorf("persist: unmarshal equipped: %w", err)
	}
	for _, e := range equipped {
		c.Equipped[e.Slot] = e.Stack
	}

	var tagged []taggedEntry
	if err := json.Unmarshal([]byte(tagJSON), &tagged); err != nil {
		return nil, fmt.Errorf("persist: unmarshal tagged blocks: %w", err)
	}
	for _, tb := range tagged {
		c.TagBlock(tb.Pos, tb.Role)
	}

	if homeJSON.Valid {
		var box world.Box
		if err := json.Unmarshal([]byte(homeJSON.String), &box); err != nil {
			return nil, fmt.Errorf("persist: unmarshal home area: %w", err)
		}
		c.HomeArea = &box
	}

	return c, nil
}

// RememberFact appends fact to ownerID's persisted memory, returning its
// position (0-indexed, in insertion order).
func (s *Store) RememberFact(ctx context.Context, ownerID, fact string) error {
	var next sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(position) FROM memories WHERE owner_id = ?`, ownerID).Scan(&next); err != nil {
		return fmt.Errorf("persist: next memory position: %w", err)
	}
	pos := 0
	if next.Valid {
		pos = int(next.Int64) + 1
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO memories (owner_id, position, fact) VALUES (?, ?, ?)`, ownerID, pos, fact); err != nil {
		return fmt.Errorf("persist: remember fact: %w", err)
	}
	return nil
}

// RecallFacts returns every fact remembered for ownerID, oldest first.
func (s *Store) RecallFacts(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fact FROM memories WHERE owner_id = ? ORDER BY position ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("persist: recall facts: %w", err)
	}
	defer rows.Close()
	var facts []string
	for rows.Next() {
		var fact string
		if err := rows.Scan(&fact); err != nil {
			return nil, fmt.Errorf("persist: scan fact: %w", err)
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

// ForgetFact removes the fact at the given 0-indexed position, re-numbering
// the remaining facts so positions stay contiguous.
func (s *Store) ForgetFact(ctx context.Context, ownerID string, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: begin forget: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE owner_id = ? AND position = ?`, ownerID, index)
	if err != nil {
		return fmt.Errorf("persist: delete fact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `UPDATE memories SET position = position - 1 WHERE owner_id = ? AND position > ?`, ownerID, index); err != nil {
		return fmt.Errorf("persist: renumber facts: %w", err)
	}
	return tx.Commit()
}
