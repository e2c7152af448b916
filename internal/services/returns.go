package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	returnrepo "github.com/atacadao/guanabara-backend/internal/data/repos/returns"
	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

// CreateReturnRequestInput carries the customer's submission. The
// request type arrives as the raw wire value and is validated here.
type CreateReturnRequestInput struct {
	OrderID     string
	UserName    string
	UserEmail   string
	UserPhone   string
	ProductName string
	ProductID   string
	Quantity    int
	RequestType string
	Reason      string
	Description string
}

// ReturnService owns the request lifecycle: creation with evidence
// intake, status transitions, admin annotation and deletion, plus the
// read operations the API exposes.
type ReturnService interface {
	Create(ctx context.Context, input CreateReturnRequestInput, photos []EvidenceFile) (*domain.ReturnRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, newStatus domain.ReturnStatus, adminNotes string) (*domain.ReturnRequest, error)
	AddAdminNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.ReturnRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error

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
}

type returnService struct {
	db              *gorm.DB
	log             *logger.Logger
	repo            returnrepo.ReturnRequestRepo
	evidence        EvidenceStore
	cleanupOnDelete bool
}

func NewReturnService(db *gorm.DB, log *logger.Logger, repo returnrepo.ReturnRequestRepo, evidence EvidenceStore, cleanupOnDelete bool) ReturnService {
	return &returnService{
		db:              db,
		log:             log.With("service", "ReturnService"),
		repo:            repo,
		evidence:        evidence,
		cleanupOnDelete: cleanupOnDelete,
	}
}

func validateCreateInput(input CreateReturnRequestInput) (domain.RequestType, error) {
	required := []struct {
		field string
		value string
	}{
		{"orderId", input.OrderID},
		{"userName", input.UserName},
		{"userEmail", input.UserEmail},
		{"userPhone", input.UserPhone},
		{"productName", input.ProductName},
		{"reason", input.Reason},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return "", &domain.ValidationError{Field: f.field, Reason: "required"}
		}
	}
	if input.Quantity < 1 {
		return "", &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	return domain.ParseRequestType(input.RequestType)
}

func (s *returnService) Create(ctx context.Context, input CreateReturnRequestInput, photos []EvidenceFile) (*domain.ReturnRequest, error) {
	requestType, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}

	// Evidence goes first: if it cannot be persisted, no request record
	// is written at all.
	photoURLs, err := s.evidence.Save(ctx, photos)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := &domain.ReturnRequest{
		ID:          uuid.New(),
		OrderID:     strings.TrimSpace(input.OrderID),
		UserName:    strings.TrimSpace(input.UserName),
		UserEmail:   strings.TrimSpace(input.UserEmail),
		UserPhone:   strings.TrimSpace(input.UserPhone),
		ProductName: strings.TrimSpace(input.ProductName),
		ProductID:   strings.TrimSpace(input.ProductID),
		Quantity:    input.Quantity,
		RequestType: requestType,
		Reason:      strings.TrimSpace(input.Reason),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := row.SetPhotoList(photoURLs); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		// The record never landed; drop the now-orphaned evidence.
		for _, ref := range photoURLs {
			if rmErr := s.evidence.Remove(ctx, ref); rmErr != nil {
				s.log.Warn("could not remove orphaned evidence", "path", ref, "error", rmErr)
			}
		}
		return nil, err
	}
	s.log.Info("return request created", "id", created.ID, "order_id", created.OrderID, "type", created.RequestType, "photos", len(photoURLs))
	return created, nil
}

func (s *returnService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *returnService) SetStatus(ctx context.Context, id uuid.UUID, newStatus domain.ReturnStatus, adminNotes string) (*domain.ReturnRequest, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(row.Status, newStatus) {
		return nil, &domain.InvalidTransitionError{From: row.Status, To: newStatus}
	}

	row.Status = newStatus
	row.UpdatedAt = time.Now().UTC()
	if newStatus.IsTerminal() && row.ResolvedAt == nil {
		resolved := row.UpdatedAt
		row.ResolvedAt = &resolved
	}
	if strings.TrimSpace(adminNotes) != "" {
		row.AdminNotes = adminNotes
	}

	if err := s.repo.SaveVersioned(ctx, row); err != nil {
		return nil, err
	}
	s.log.Info("return request status updated", "id", id, "status", newStatus)
	return row, nil
}

func (s *returnService) AddAdminNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.ReturnRequest, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Overwrite, not append: staff keep one current annotation.
	row.AdminNotes = notes
	row.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveVersioned(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *returnService) Delete(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cleanupOnDelete {
		// Best effort: the record is gone either way. Retention is the
		// default policy; cascade removal is opt-in configuration.
		for _, ref := range row.PhotoList() {
			if rmErr := s.evidence.Remove(ctx, ref); rmErr != nil {
				s.log.Warn("could not remove evidence on delete", "id", id, "path", ref, "error", rmErr)
			}
		}
	}
	s.log.Info("return request deleted", "id", id)
	return nil
}

func (s *returnService) List(ctx context.Context) ([]*domain.ReturnRequest, error) {
	return s.repo.List(ctx)
}

func (s *returnService) ListByStatus(ctx context.Context, status domain.ReturnStatus) ([]*domain.ReturnRequest, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *returnService) ListByRequestType(ctx context.Context, t domain.RequestType) ([]*domain.ReturnRequest, error) {
	return s.repo.ListByRequestType(ctx, t)
}

func (s *returnService) ListByUserEmail(ctx context.Context, email string) ([]*domain.ReturnRequest, error) {
	return s.repo.ListByUserEmail(ctx, email)
}

func (s *returnService) SearchByUserName(ctx context.Context, name string) ([]*domain.ReturnRequest, error) {
	return s.repo.SearchByUserName(ctx, name)
}

func (s *returnService) SearchByProductName(ctx context.Context, name string) ([]*domain.ReturnRequest, error) {
	return s.repo.SearchByProductName(ctx, name)
}

func (s *returnService) ListByOrderID(ctx context.Context, orderID string) ([]*domain.ReturnRequest, error) {
	return s.repo.ListByOrderID(ctx, orderID)
}

func (s *returnService) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.ReturnRequest, error) {
	return s.repo.ListCreatedBetween(ctx, from, to)
}

func (s *returnService) ListRecent(ctx context.Context) ([]*domain.ReturnRequest, error) {
	return s.repo.ListRecent(ctx)
}

func (s *returnService) ListUnresolved(ctx context.Context) ([]*domain.ReturnRequest, error) {
	return s.repo.ListUnresolved(ctx)
}

func (s *returnService) ListResolved(ctx context.Context) ([]*domain.ReturnRequest, error) {
	return s.repo.ListResolved(ctx)
}
