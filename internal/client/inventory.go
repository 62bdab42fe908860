package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/sweetshop/internal/model"
)

var (
	// ErrInventoryFetchFailed wraps any failure to list items.
	ErrInventoryFetchFailed = errors.New("failed to fetch sweets")
	// ErrInventoryMutationFailed wraps any failed create, update, delete or restock.
	ErrInventoryMutationFailed = errors.New("failed to update sweets")
	// ErrNoToken is returned when no bearer token is stored.
	ErrNoToken = errors.New("not signed in")
)

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Read() (string, bool)
}

// Inventory is the authenticated sweets client. The token is read from
// Tokens on every call.
type Inventory struct {
	Client *Client
	Tokens TokenSource
}

// NewInventory binds c to a token source.
func NewInventory(c *Client, tokens TokenSource) *Inventory {
	return &Inventory{Client: c, Tokens: tokens}
}

func (inv *Inventory) token() (string, error) {
	token, ok := inv.Tokens.Read()
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// itemList accepts both {"sweets": [...]} and a bare array.
type itemList []model.Item

func (l *itemList) UnmarshalJSON(data []byte) error {
	var items []model.Item
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var wrapped struct {
		Sweets []model.Item `json:"sweets"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Sweets
	return nil
}

// List handles GET /api/sweets. The result is never nil on success.
func (inv *Inventory) List(ctx context.Context) ([]model.Item, error) {
	token, err := inv.token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryFetchFailed, err)
	}

	var items itemList
	if err := inv.Client.do(ctx, "list", http.MethodGet, "/api/sweets", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryFetchFailed, err)
	}
	if items == nil {
		items = itemList{}
	}
	return items, nil
}

// Create handles POST /api/sweets.
func (inv *Inventory) Create(ctx context.Context, in model.ItemInput) error {
	return inv.mutate(ctx, "create", http.MethodPost, "/api/sweets", in)
}

// Update handles PUT /api/sweets/{id}.
func (inv *Inventory) Update(ctx context.Context, id string, in model.ItemInput) error {
	return inv.mutate(ctx, "update", http.MethodPut, itemPath(id), in)
}

// Delete handles DELETE /api/sweets/{id}.
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	return inv.mutate(ctx, "delete", http.MethodDelete, itemPath(id), nil)
}

// Restock handles POST /api/sweets/{id}/restock.
func (inv *Inventory) Restock(ctx context.Context, id string, amount int) error {
	return inv.mutate(ctx, "restock", http.MethodPost, itemPath(id)+"/restock", model.RestockInput{Quantity: amount})
}

func (inv *Inventory) mutate(ctx context.Context, op, method, path string, body any) error {
	token, err := inv.token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInventoryMutationFailed, err)
	}
	if err := inv.Client.do(ctx, op, method, path, token, body, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrInventoryMutationFailed, err)
	}
	return nil
}

func itemPath(id string) string {
	return "/api/sweets/" + url.PathEscape(id)
}
