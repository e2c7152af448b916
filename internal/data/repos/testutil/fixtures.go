package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atacadao/guanabara-backend/internal/domain"
)

// SeedReturnRequest inserts a minimal valid request. Callers adjust the
// returned value through the mutate hook before it is written.
func SeedReturnRequest(tb testing.TB, ctx context.Context, db *gorm.DB, mutate func(*domain.ReturnRequest)) *domain.ReturnRequest {
	tb.Helper()
	now := time.Now().UTC()
	row := &domain.ReturnRequest{
		ID:          uuid.New(),
		OrderID:     "ORD-1",
		UserName:    "Maria Silva",
		UserEmail:   "maria@example.com",
		UserPhone:   "+55 21 99999-0000",
		ProductName: "Arroz Tipo 1 5kg",
		Quantity:    1,
		RequestType: domain.RequestTypeRefund,
		Reason:      "defective",
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := row.SetPhotoList(nil); err != nil {
		tb.Fatalf("seed photo list: %v", err)
	}
	if mutate != nil {
		mutate(row)
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed return request: %v", err)
	}
	return row
}
