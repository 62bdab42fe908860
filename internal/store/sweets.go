package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/sweetshop/internal/model"
)

// ErrNotFound is returned when a sweet does not exist or was deleted.
var ErrNotFound = errors.New("not found")

const sweetColumns = `id, name, category, price, quantity, image, description, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweet(row rowScanner) (*model.Item, error) {
	var it model.Item
	var image, description sql.NullString
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Price, &it.Quantity,
		&image, &description, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt); err != nil {
		return nil, err
	}
	it.Image = image.String
	it.Description = description.String
	return &it, nil
}

// CreateSweet creates a new sweet with a random id.
func CreateSweet(ctx context.Context, db *sql.DB, in model.ItemInput) (*model.Item, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO sweets (id, name, category, price, quantity, image, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Category, in.Price, in.Quantity, in.Image, in.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sweet: %w", err)
	}
	return GetSweet(ctx, db, id)
}

// GetSweet returns an active sweet by id, or ErrNotFound.
func GetSweet(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	it, err := scanSweet(db.QueryRowContext(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sweet: %w", err)
	}
	return it, nil
}

// ListSweets returns all active sweets ordered by name.
func ListSweets(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE deleted_at IS NULL ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sweets: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sweet: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateSweet replaces a sweet's editable fields.
func UpdateSweet(ctx context.Context, db *sql.DB, id string, in model.ItemInput) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE sweets SET name = ?, category = ?, price = ?, quantity = ?, image = ?, description = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		in.Name, in.Category, in.Price, in.Quantity, in.Image, in.Description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating sweet: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}
	return GetSweet(ctx, db, id)
}

// DeleteSweet soft-deletes a sweet.
func DeleteSweet(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE sweets SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting sweet: %w", err)
	}
	return expectOneRow(result)
}

// RestockSweet adds amount units to a sweet's quantity.
func RestockSweet(ctx context.Context, db *sql.DB, id string, amount int) (*model.Item, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("restock amount must be positive")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE sweets SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		amount, id,
	)
	if err != nil {
		return nil, fmt.Errorf("restocking sweet: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}
	return GetSweet(ctx, db, id)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
