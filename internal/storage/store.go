// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"groupify/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations Groupify needs. The
// abstraction keeps the service layer independent of the backend.
type Store interface {
	// CreateReceipt persists a parsed receipt with its items. The
	// receipt.ID field is populated by the store. ownerID may be empty
	// for anonymous receipts.
	CreateReceipt(ctx context.Context, receipt *models.Receipt, ownerID string) error

	// GetReceipt retrieves a receipt by ID, items included, in their
	// original detection order.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// UpdateReceipt rewrites a receipt's totals, tip and item
	// assignments.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error

	// ListReceipts returns the receipts owned by ownerID, newest first.
	ListReceipts(ctx context.Context, ownerID string) ([]*models.Receipt, error)

	// SaveSettlements replaces the stored settlement plan for a receipt.
	SaveSettlements(ctx context.Context, receiptID string, settlements []models.Settlement) error

	// ListSettlements returns the stored settlement plan for a receipt in
	// the order it was generated.
	ListSettlements(ctx context.Context, receiptID string) ([]models.Settlement, error)

	// CreateGroup persists a reusable people list.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all saved groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when
	// no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
