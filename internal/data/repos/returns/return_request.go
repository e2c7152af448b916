package returns

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

// recentWindow is how far back "recent" requests reach.
const recentWindow = 30 * 24 * time.Hour

type ReturnRequestRepo interface {
	Create(ctx context.Context, row *domain.ReturnRequest) (*domain.ReturnRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	List(ctx context.Context) ([]*domain.ReturnRequest, error)
	ListByStatus(ctx context.Context, status domain.ReturnStatus) ([]*domain.ReturnRequest, error)
	ListByRequestType(ctx context.Context, t domain.RequestType) ([]*domain.ReturnRequest, error)
	ListByUserEmail(ctx context.Context, email string) ([]*domain.ReturnRequest, error)
	SearchByUserName(ctx context.Context, name string) ([]*domain.ReturnRequest, error)
	SearchByProductName(ctx context.Context, name string) ([]*domain.ReturnRequest, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.ReturnRequest, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.ReturnRequest, error)
	ListRecent(ctx context.Context) ([]*domain.ReturnRequest, error)
	ListUnresolved(ctx context.Context) ([]*domain.ReturnRequest, error)
	ListResolved(ctx context.Context) ([]*domain.ReturnRequest, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.ReturnStatus]int64, error)
	// SaveVersioned writes the full row guarded by its version counter.
	// The stored version must still equal row.Version; on success the
	// counter is incremented (in the store and on row). A stale row
	// fails with domain.ErrConcurrentModification.
	SaveVersioned(ctx context.Context, row *domain.ReturnRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func toLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// escapeLike neutralizes LIKE wildcards in user-supplied substrings.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

type returnRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReturnRequestRepo(db *gorm.DB, log *logger.Logger) ReturnRequestRepo {
	return &returnRequestRepo{db: db, log: log.With("repo", "ReturnRequestRepo")}
}

func (r *returnRequestRepo) Create(ctx context.Context, row *domain.ReturnRequest) (*domain.ReturnRequest, error) {
	if row == nil {
		return nil, errors.New("nil return request")
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *returnRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	var row domain.ReturnRequest
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *returnRequestRepo) List(ctx context.Context) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListByStatus(ctx context.Context, status domain.ReturnStatus) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListByRequestType(ctx context.Context, t domain.RequestType) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("request_type = ?", t).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListByUserEmail(ctx context.Context, email string) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) SearchByUserName(ctx context.Context, name string) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("LOWER(user_name) LIKE ?", "%"+escapeLike(toLower(name))+"%").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) SearchByProductName(ctx context.Context, name string) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("LOWER(product_name) LIKE ?", "%"+escapeLike(toLower(name))+"%").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListByOrderID(ctx context.Context, orderID string) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListRecent(ctx context.Context) ([]*domain.ReturnRequest, error) {
	cutoff := time.Now().UTC().Add(-recentWindow)
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListUnresolved(ctx context.Context) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.ReturnStatus{domain.StatusPending, domain.StatusUnderReview}).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) ListResolved(ctx context.Context) ([]*domain.ReturnRequest, error) {
	var out []*domain.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.ReturnStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted}).
		Order("resolved_at DESC").
		Find(&out).Error
	return out, err
}

func (r *returnRequestRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ReturnRequest{}).Count(&n).Error
	return n, err
}

func (r *returnRequestRepo) CountByStatus(ctx context.Context) (map[domain.ReturnStatus]int64, error) {
	type bucket struct {
		Status domain.ReturnStatus
		N      int64
	}
	var rows []bucket
	err := r.db.WithContext(ctx).
		Model(&domain.ReturnRequest{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.ReturnStatus]int64, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		counts[s] = 0
	}
	for _, b := range rows {
		counts[b.Status] = b.N
	}
	return counts, nil
}

func (r *returnRequestRepo) SaveVersioned(ctx context.Context, row *domain.ReturnRequest) error {
	if row == nil {
		return errors.New("nil return request")
	}
	expected := row.Version
	res := r.db.WithContext(ctx).
		Model(&domain.ReturnRequest{}).
		Where("id = ? AND version = ?", row.ID, expected).
		Updates(map[string]interface{}{
			"status":      row.Status,
			"admin_notes": row.AdminNotes,
			"updated_at":  row.UpdatedAt,
			"resolved_at": row.ResolvedAt,
			"version":     expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer got there first.
		var n int64
		if err := r.db.WithContext(ctx).
			Model(&domain.ReturnRequest{}).
			Where("id = ?", row.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrentModification
	}
	row.Version = expected + 1
	return nil
}

func (r *returnRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.ReturnRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
