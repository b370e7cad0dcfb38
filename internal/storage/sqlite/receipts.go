package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"groupify/internal/models"
	"groupify/internal/storage"
)

// CreateReceipt persists a receipt with its items and assignments.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt, ownerID string) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner interface{}
	if ownerID != "" {
		owner = ownerID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, total, original_total, tip_amount, currency, created_at, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.Total.String(), receipt.OriginalTotal.String(),
		receipt.TipAmount.String(), receipt.Currency, receipt.CreatedAt, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO receipt_items (id, receipt_id, name, quantity, unit_price, price, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, receipt.ID, item.Name, item.Quantity,
			item.UnitPrice.String(), item.Price.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, person := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, person) VALUES (?, ?)",
				item.ID, person,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReceipt retrieves a receipt by ID, items in detection order.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var total, originalTotal, tipAmount string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, total, original_total, tip_amount, currency, created_at FROM receipts WHERE id = ?",
		receiptID,
	).Scan(&receipt.ID, &total, &originalTotal, &tipAmount, &receipt.Currency, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	if receipt.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total for receipt %s: %w", receiptID, err)
	}
	if receipt.OriginalTotal, err = decimal.NewFromString(originalTotal); err != nil {
		return nil, fmt.Errorf("corrupt original_total for receipt %s: %w", receiptID, err)
	}
	if receipt.TipAmount, err = decimal.NewFromString(tipAmount); err != nil {
		return nil, fmt.Errorf("corrupt tip_amount for receipt %s: %w", receiptID, err)
	}

	items, err := s.receiptItems(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return receipt, nil
}

func (s *SQLiteStore) receiptItems(ctx context.Context, receiptID string) ([]models.ReceiptItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity, unit_price, price FROM receipt_items
		 WHERE receipt_id = ? ORDER BY position`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	items := []models.ReceiptItem{}
	for rows.Next() {
		var item models.ReceiptItem
		var unitPrice, price string
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &unitPrice, &price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("corrupt unit_price for item %s: %w", item.ID, err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price for item %s: %w", item.ID, err)
		}
		item.AssignedTo = []string{}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range items {
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT person FROM item_assignments WHERE item_id = ? ORDER BY person",
			items[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item assignments: %w", err)
		}
		for assignRows.Next() {
			var person string
			if err := assignRows.Scan(&person); err != nil {
				assignRows.Close()
				return nil, fmt.Errorf("failed to scan assignment: %w", err)
			}
			items[i].AssignedTo = append(items[i].AssignedTo, person)
		}
		if err := assignRows.Err(); err != nil {
			assignRows.Close()
			return nil, fmt.Errorf("failed to iterate assignments: %w", err)
		}
		assignRows.Close()
	}

	return items, nil
}

// UpdateReceipt rewrites the receipt totals and the items' assignments.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE receipts SET total = ?, original_total = ?, tip_amount = ?, currency = ? WHERE id = ?",
		receipt.Total.String(), receipt.OriginalTotal.String(),
		receipt.TipAmount.String(), receipt.Currency, receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("receipt %s: %w", receipt.ID, storage.ErrNotFound)
	}

	for _, item := range receipt.Items {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM item_assignments WHERE item_id = ?", item.ID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		for _, person := range item.AssignedTo {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, person) VALUES (?, ?)",
				item.ID, person,
			); err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE receipt_items SET quantity = ?, unit_price = ?, price = ? WHERE id = ?",
			item.Quantity, item.UnitPrice.String(), item.Price.String(), item.ID,
		); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListReceipts returns receipts owned by ownerID, newest first. Items are
// not loaded; use GetReceipt for the full record.
func (s *SQLiteStore) ListReceipts(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, total, original_total, tip_amount, currency, created_at
		 FROM receipts WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		receipt := &models.Receipt{Items: []models.ReceiptItem{}}
		var total, originalTotal, tipAmount string
		if err := rows.Scan(&receipt.ID, &total, &originalTotal, &tipAmount,
			&receipt.Currency, &receipt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if receipt.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total for receipt %s: %w", receipt.ID, err)
		}
		if receipt.OriginalTotal, err = decimal.NewFromString(originalTotal); err != nil {
			return nil, fmt.Errorf("corrupt original_total for receipt %s: %w", receipt.ID, err)
		}
		if receipt.TipAmount, err = decimal.NewFromString(tipAmount); err != nil {
			return nil, fmt.Errorf("corrupt tip_amount for receipt %s: %w", receipt.ID, err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	return receipts, nil
}
