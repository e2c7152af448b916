package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestType says what the customer wants done with the purchase.
type RequestType string

const (
	RequestTypeExchange RequestType = "EXCHANGE"
	RequestTypeRefund   RequestType = "REFUND"
)

// ParseRequestType accepts the wire value case-insensitively.
func ParseRequestType(raw string) (RequestType, error) {
	switch RequestType(strings.ToUpper(strings.TrimSpace(raw))) {
	case RequestTypeExchange:
		return RequestTypeExchange, nil
	case RequestTypeRefund:
		return RequestTypeRefund, nil
	}
	return "", &ValidationError{Field: "requestType", Reason: fmt.Sprintf("unknown request type %q", raw)}
}

// ReturnStatus is the lifecycle state of a return request.
type ReturnStatus string

const (
	StatusPending     ReturnStatus = "PENDING"
	StatusUnderReview ReturnStatus = "UNDER_REVIEW"
	StatusApproved    ReturnStatus = "APPROVED"
	StatusRejected    ReturnStatus = "REJECTED"
	StatusCompleted   ReturnStatus = "COMPLETED"
)

// AllStatuses is the fixed enumeration order used by stats payloads.
var AllStatuses = []ReturnStatus{
	StatusPending,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
}

func ParseReturnStatus(raw string) (ReturnStatus, error) {
	switch ReturnStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusUnderReview:
		return StatusUnderReview, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", raw)}
}

// IsTerminal reports whether no further transition is defined out of s.
func (s ReturnStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// transitions is the closed forward graph over ReturnStatus. Terminal
// states have no outgoing edges.
var transitions = map[ReturnStatus][]ReturnStatus{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCompleted},
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to ReturnStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReturnRequest is a customer's request to return or exchange a
// purchased product. Identity fields are a snapshot taken at submission
// time; the order and product references are advisory, not foreign keys.
type ReturnRequest struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     string      `gorm:"column:order_id;not null;index" json:"orderId"`
	UserName    string      `gorm:"column:user_name;not null" json:"userName"`
	UserEmail   string      `gorm:"column:user_email;not null;index" json:"userEmail"`
	UserPhone   string      `gorm:"column:user_phone;not null" json:"userPhone"`
	ProductName string      `gorm:"column:product_name;not null" json:"productName"`
	ProductID   string      `gorm:"column:product_id" json:"productId,omitempty"`
	Quantity    int         `gorm:"not null" json:"quantity"`
	RequestType RequestType `gorm:"column:request_type;not null" json:"requestType"`
	Reason      string      `gorm:"type:text;not null" json:"reason"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	Status     ReturnStatus   `gorm:"not null;index" json:"status"`
	PhotoURLs  datatypes.JSON `gorm:"column:photo_urls;not null" json:"photoUrls"`
	AdminNotes string         `gorm:"column:admin_notes;type:text" json:"adminNotes,omitempty"`

	CreatedAt  time.Time  `gorm:"column:created_at;not null;index" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
	ResolvedAt *time.Time `gorm:"column:resolved_at;index" json:"resolvedAt,omitempty"`

	// Version guards concurrent read-modify-write cycles; see
	// ReturnRequestRepo.SaveVersioned.
	Version int64 `gorm:"not null;default:0" json:"-"`
}

func (ReturnRequest) TableName() string { return "return_requests" }

// PhotoList decodes the stored photo references, preserving order.
func (r *ReturnRequest) PhotoList() []string {
	if len(r.PhotoURLs) == 0 {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal(r.PhotoURLs, &urls); err != nil {
		return []string{}
	}
	return urls
}

// SetPhotoList encodes the photo references. Only called at creation;
// the set is immutable afterwards.
func (r *ReturnRequest) SetPhotoList(urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	r.PhotoURLs = datatypes.JSON(raw)
	return nil
}

// Stats is a point-in-time snapshot of the request population.
//
// Percentages are computed independently per status as count/total*100,
// so under floating rounding their sum may differ slightly from 100.
// When Total is 0 every percentage is 0.
type Stats struct {
	TotalRequests       int64 `json:"totalRequests"`
	PendingRequests     int64 `json:"pendingRequests"`
	UnderReviewRequests int64 `json:"underReviewRequests"`
	ApprovedRequests    int64 `json:"approvedRequests"`
	RejectedRequests    int64 `json:"rejectedRequests"`
	CompletedRequests   int64 `json:"completedRequests"`

	PendingPercentage     float64 `json:"pendingPercentage"`
	UnderReviewPercentage float64 `json:"underReviewPercentage"`
	ApprovedPercentage    float64 `json:"approvedPercentage"`
	RejectedPercentage    float64 `json:"rejectedPercentage"`
	CompletedPercentage   float64 `json:"completedPercentage"`
}
