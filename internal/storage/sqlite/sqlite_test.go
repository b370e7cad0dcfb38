package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"groupify/internal/models"
	"groupify/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReceipt() *models.Receipt {
	return &models.Receipt{
		Items: []models.ReceiptItem{
			{
				Name: "Пица", Quantity: 1,
				UnitPrice: dec("12.50"), Price: dec("12.50"),
				AssignedTo: []string{"Ана", "Борис"},
			},
			{
				Name: "Кафе", Quantity: 2,
				UnitPrice: dec("3.50"), Price: dec("7.00"),
				AssignedTo: []string{},
			},
		},
		Total:         dec("19.50"),
		OriginalTotal: dec("19.50"),
		TipAmount:     decimal.Zero,
		Currency:      "BGN",
	}
}

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "groupify-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("CreateReceipt generates ID and timestamp", func(t *testing.T) {
		receipt := sampleReceipt()
		if err := store.CreateReceipt(ctx, receipt, ""); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		if receipt.ID == "" {
			t.Error("Expected receipt ID to be generated")
		}
		if receipt.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for _, item := range receipt.Items {
			if item.ID == "" {
				t.Error("Expected item IDs to be generated")
			}
		}
	})

	t.Run("GetReceipt round-trips items, order and assignments", func(t *testing.T) {
		original := sampleReceipt()
		if err := store.CreateReceipt(ctx, original, ""); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		got, err := store.GetReceipt(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if len(got.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(got.Items))
		}
		if got.Items[0].Name != "Пица" || got.Items[1].Name != "Кафе" {
			t.Errorf("item order not preserved: %q, %q", got.Items[0].Name, got.Items[1].Name)
		}
		if !got.Items[0].Price.Equal(dec("12.50")) {
			t.Errorf("price = %v, want 12.50", got.Items[0].Price)
		}
		if len(got.Items[0].AssignedTo) != 2 {
			t.Errorf("assignments = %v, want Ана and Борис", got.Items[0].AssignedTo)
		}
		if !got.Total.Equal(dec("19.50")) {
			t.Errorf("total = %v, want 19.50", got.Total)
		}
		if got.Currency != "BGN" {
			t.Errorf("currency = %q, want BGN", got.Currency)
		}
	})

	t.Run("GetReceipt unknown ID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetReceipt(ctx, "no-such-receipt")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateReceipt rewrites tip and assignments", func(t *testing.T) {
		receipt := sampleReceipt()
		if err := store.CreateReceipt(ctx, receipt, ""); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		receipt.AddTip(dec("2.00"))
		receipt.Items[1].AssignedTo = []string{"Вера"}
		if err := store.UpdateReceipt(ctx, receipt); err != nil {
			t.Fatalf("UpdateReceipt failed: %v", err)
		}

		got, err := store.GetReceipt(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if !got.TipAmount.Equal(dec("2.00")) {
			t.Errorf("tip = %v, want 2.00", got.TipAmount)
		}
		if !got.Total.Equal(dec("21.50")) {
			t.Errorf("total = %v, want 21.50", got.Total)
		}
		if len(got.Items[1].AssignedTo) != 1 || got.Items[1].AssignedTo[0] != "Вера" {
			t.Errorf("assignments = %v, want [Вера]", got.Items[1].AssignedTo)
		}
	})

	t.Run("ListReceipts filters by owner", func(t *testing.T) {
		user := &models.User{ID: "user-owner", Email: "owner@example.com", DisplayName: "Owner", PasswordHash: "x"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		owned := sampleReceipt()
		if err := store.CreateReceipt(ctx, owned, user.ID); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		anonymous := sampleReceipt()
		if err := store.CreateReceipt(ctx, anonymous, ""); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		receipts, err := store.ListReceipts(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListReceipts failed: %v", err)
		}
		if len(receipts) != 1 {
			t.Fatalf("receipts = %d, want 1", len(receipts))
		}
		if receipts[0].ID != owned.ID {
			t.Errorf("listed %s, want %s", receipts[0].ID, owned.ID)
		}
	})

	t.Run("SaveSettlements replaces previous plan", func(t *testing.T) {
		receipt := sampleReceipt()
		if err := store.CreateReceipt(ctx, receipt, ""); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		first := []models.Settlement{
			{FromPerson: "Борис", ToPerson: "Ана", Amount: dec("5.00"), Currency: "BGN"},
			{FromPerson: "Вера", ToPerson: "Ана", Amount: dec("3.00"), Currency: "BGN"},
		}
		if err := store.SaveSettlements(ctx, receipt.ID, first); err != nil {
			t.Fatalf("SaveSettlements failed: %v", err)
		}

		second := []models.Settlement{
			{FromPerson: "Борис", ToPerson: "Ана", Amount: dec("7.50"), Currency: "BGN"},
		}
		if err := store.SaveSettlements(ctx, receipt.ID, second); err != nil {
			t.Fatalf("SaveSettlements failed: %v", err)
		}

		got, err := store.ListSettlements(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("settlements = %d, want 1 after replace", len(got))
		}
		if got[0].FromPerson != "Борис" || !got[0].Amount.Equal(dec("7.50")) {
			t.Errorf("settlement = %+v, want Борис -> Ана 7.50", got[0])
		}
		if got[0].ReceiptID != receipt.ID {
			t.Errorf("receipt id = %s, want %s", got[0].ReceiptID, receipt.ID)
		}
	})

	t.Run("Groups round-trip with members", func(t *testing.T) {
		group := &models.Group{Name: "Roommates", Members: []string{"Ана", "Борис", "Вера"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Roommates" {
			t.Errorf("name = %q, want Roommates", got.Name)
		}
		if len(got.Members) != 3 {
			t.Errorf("members = %v, want 3 names", got.Members)
		}

		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) == 0 {
			t.Error("Expected at least one group listed")
		}
	})

	t.Run("Users round-trip and missing email is nil", func(t *testing.T) {
		user := &models.User{ID: "user-ana", Email: "ana@example.com", DisplayName: "Ана", PasswordHash: "hash"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByEmail(ctx, "ana@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Fatalf("got = %+v, want user %s", got, user.ID)
		}

		missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail for missing user failed: %v", err)
		}
		if missing != nil {
			t.Errorf("missing user = %+v, want nil", missing)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != "ana@example.com" {
			t.Errorf("email = %q, want ana@example.com", byID.Email)
		}
	})
}
