package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

// SaveSettlements replaces the stored settlement plan for a receipt.
// Re-splitting after a new assignment or tip invalidates the old plan, so
// the write is a delete-and-insert in one transaction.
func (s *SQLiteStore) SaveSettlements(ctx context.Context, receiptID string, settlements []models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlements WHERE receipt_id = ?", receiptID); err != nil {
		return fmt.Errorf("failed to clear settlements: %w", err)
	}

	now := time.Now().Unix()
	for i := range settlements {
		st := &settlements[i]
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		st.ReceiptID = receiptID
		if st.CreatedAt == 0 {
			st.CreatedAt = now
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlements (id, receipt_id, from_person, to_person, amount, currency, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, receiptID, st.FromPerson, st.ToPerson,
			st.Amount.String(), st.Currency, i, st.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSettlements returns the stored settlement plan in generation order.
func (s *SQLiteStore) ListSettlements(ctx context.Context, receiptID string) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, from_person, to_person, amount, currency, created_at
		 FROM settlements WHERE receipt_id = ? ORDER BY position`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var st models.Settlement
		var amount string
		if err := rows.Scan(&st.ID, &st.ReceiptID, &st.FromPerson, &st.ToPerson,
			&amount, &st.Currency, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if st.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for settlement %s: %w", st.ID, err)
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
