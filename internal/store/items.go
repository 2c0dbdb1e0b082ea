package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lupppig/orderkey"
)

// Item is one entry of an ordered list.
type Item struct {
	ID        string       `json:"id"`
	List      string       `json:"list"`
	Title     string       `json:"title"`
	Position  orderkey.Key `json:"position"`
	CreatedAt time.Time    `json:"created_at"`
}

// Problem describes a stored position that is not a valid order key.
type Problem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position string `json:"position"`
	Reason   string `json:"reason"`
}

const itemColumns = `id, list, title, position, created_at`

// Items returns the items of list in display order.
func (s *Store) Items(ctx context.Context, list string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE list = ? ORDER BY position COLLATE BINARY`, list)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Get returns the item with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, err
}

// Lists returns the names of all non-empty lists.
func (s *Store) Lists(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT list FROM items ORDER BY list`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	var lists []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, name)
	}
	return lists, rows.Err()
}

// Add creates an item in list so that it ends up at index at. A negative or
// too large index appends.
func (s *Store) Add(ctx context.Context, list, title string, at int) (Item, error) {
	if list == "" || title == "" {
		return Item{}, errors.New("store: list and title must not be empty")
	}

	item := Item{
		ID:        uuid.NewString(),
		List:      list,
		Title:     title,
		CreatedAt: s.now().UTC(),
	}

	err := s.withWriteLock(ctx, func() error {
		key, err := orderkey.Place(
			func() (*orderkey.Key, *orderkey.Key, error) {
				keys, err := s.positions(ctx, list, "")
				if err != nil {
					return nil, nil, err
				}
				idx := at
				if idx < 0 || idx > len(keys) {
					idx = len(keys)
				}
				return orderkey.Neighbors(keys, idx)
			},
			func(key orderkey.Key) error {
				item.Position = key
				return s.insert(ctx, item)
			},
			s.retries,
		)
		if err != nil {
			return err
		}
		item.Position = key
		return nil
	})
	if err != nil {
		return Item{}, fmt.Errorf("add to %s: %w", list, err)
	}

	s.logger.Info("item added", "list", list, "id", item.ID, "position", item.Position.String())
	return item, nil
}

// Move reorders the item with the given ID so that it ends up at index to of
// its list. Only that item's position changes. On error no position changes.
func (s *Store) Move(ctx context.Context, id string, to int) (Item, error) {
	var item Item
	err := s.withWriteLock(ctx, func() error {
		var err error
		item, err = s.Get(ctx, id)
		if err != nil {
			return err
		}

		keys, err := s.positions(ctx, item.List, "")
		if err != nil {
			return err
		}
		from := -1
		for i, k := range keys {
			if k == item.Position {
				from = i
				break
			}
		}
		if from == -1 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if _, err := orderkey.Reposition(keys, from, to); err != nil {
			return err
		}
		if from == to {
			return nil
		}

		key, err := orderkey.Place(
			func() (*orderkey.Key, *orderkey.Key, error) {
				rest, err := s.positions(ctx, item.List, id)
				if err != nil {
					return nil, nil, err
				}
				return orderkey.Neighbors(rest, to)
			},
			func(key orderkey.Key) error {
				return s.updatePosition(ctx, id, key)
			},
			s.retries,
		)
		if err != nil {
			return err
		}
		s.logger.Debug("item moved", "id", id, "from", item.Position.String(), "to", key.String())
		item.Position = key
		return nil
	})
	if err != nil {
		return Item{}, fmt.Errorf("move %s: %w", id, err)
	}
	return item, nil
}

// Remove deletes the item with the given ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.withWriteLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

// Verify checks every stored position in list and reports those that are
// not valid order keys. Unlike Items it does not fail on malformed rows.
func (s *Store) Verify(ctx context.Context, list string) ([]Problem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, position FROM items WHERE list = ? ORDER BY position COLLATE BINARY`, list)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.ID, &p.Title, &p.Position); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if orderkey.IsValid(p.Position) {
			continue
		}
		p.Reason = describeInvalid(p.Position)
		s.logger.Warn("malformed position", "list", list, "id", p.ID, "position", p.Position)
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

func describeInvalid(pos string) string {
	if _, err := orderkey.Parse(pos); err != nil {
		return err.Error()
	}
	return ""
}

// positions returns the keys of list in ascending order, leaving out the
// item with ID skip.
func (s *Store) positions(ctx context.Context, list, skip string) ([]orderkey.Key, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position FROM items WHERE list = ? AND id <> ? ORDER BY position COLLATE BINARY`, list, skip)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var keys []orderkey.Key
	for rows.Next() {
		var k orderkey.Key
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) insert(ctx context.Context, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.List, item.Title, item.Position, item.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		s.logger.Warn("position conflict", "list", item.List, "position", item.Position.String())
		return fmt.Errorf("insert %s: %w", item.Position, orderkey.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *Store) updatePosition(ctx context.Context, id string, key orderkey.Key) error {
	_, err := s.db.ExecContext(ctx, `UPDATE items SET position = ? WHERE id = ?`, key, id)
	if isUniqueViolation(err) {
		s.logger.Warn("position conflict", "id", id, "position", key.String())
		return fmt.Errorf("update %s: %w", key, orderkey.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		item    Item
		created int64
	)
	if err := row.Scan(&item.ID, &item.List, &item.Title, &item.Position, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("scan item: %w", err)
	}
	item.CreatedAt = time.Unix(0, created).UTC()
	return item, nil
}
