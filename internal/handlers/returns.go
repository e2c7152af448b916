package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
	"github.com/atacadao/guanabara-backend/internal/services"
)

const maxUploadBytes = 32 << 20

type ReturnHandler struct {
	log     *logger.Logger
	returns services.ReturnService
	stats   services.StatsService
}

func NewReturnHandler(log *logger.Logger, returns services.ReturnService, stats services.StatsService) *ReturnHandler {
	return &ReturnHandler{
		log:     log.With("handler", "ReturnHandler"),
		returns: returns,
		stats:   stats,
	}
}

// Create accepts the customer submission as a multipart form with the
// photo files under the "photos" field.
func (h *ReturnHandler) Create(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "quantity: must be a positive integer")
		return
	}

	input := services.CreateReturnRequestInput{
		OrderID:     c.PostForm("orderId"),
		UserName:    c.PostForm("userName"),
		UserEmail:   c.PostForm("userEmail"),
		UserPhone:   c.PostForm("userPhone"),
		ProductName: c.PostForm("productName"),
		ProductID:   c.PostForm("productId"),
		Quantity:    quantity,
		RequestType: c.PostForm("requestType"),
		Reason:      c.PostForm("reason"),
		Description: c.PostForm("description"),
	}

	var photos []services.EvidenceFile
	if form := c.Request.MultipartForm; form != nil {
		for _, fh := range form.File["photos"] {
			r, err := fh.Open()
			if err != nil {
				h.log.Error("cannot open uploaded photo", "name", fh.Filename, "error", err)
				RespondError(c, http.StatusBadRequest, "could not read uploaded photo "+fh.Filename)
				return
			}
			defer func(rc io.ReadCloser) { _ = rc.Close() }(r)
			photos = append(photos, services.EvidenceFile{
				OriginalName: fh.Filename,
				Size:         fh.Size,
				Reader:       r,
			})
		}
	}

	created, err := h.returns.Create(c.Request.Context(), input, photos)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, "Return request submitted successfully", gin.H{
		"requestId": created.ID,
		"request":   created,
	})
}

func (h *ReturnHandler) List(c *gin.Context) {
	rows, err := h.returns.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request id")
		return
	}
	row, err := h.returns.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *ReturnHandler) ListPending(c *gin.Context) {
	rows, err := h.returns.ListByStatus(c.Request.Context(), domain.StatusPending)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListByStatus(c *gin.Context) {
	status, err := domain.ParseReturnStatus(c.Param("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rows, err := h.returns.ListByStatus(c.Request.Context(), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListByRequestType(c *gin.Context) {
	t, err := domain.ParseRequestType(c.Param("type"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rows, err := h.returns.ListByRequestType(c.Request.Context(), t)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListByUserEmail(c *gin.Context) {
	rows, err := h.returns.ListByUserEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) SearchByUserName(c *gin.Context) {
	rows, err := h.returns.SearchByUserName(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) SearchByProduct(c *gin.Context) {
	rows, err := h.returns.SearchByProductName(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListByOrder(c *gin.Context) {
	rows, err := h.returns.ListByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

// ListByPeriod filters by creation time: ?start=RFC3339&end=RFC3339.
func (h *ReturnHandler) ListByPeriod(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "start: must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "end: must be an RFC 3339 timestamp")
		return
	}
	rows, err := h.returns.ListCreatedBetween(c.Request.Context(), start, end)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListRecent(c *gin.Context) {
	rows, err := h.returns.ListRecent(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListUnresolved(c *gin.Context) {
	rows, err := h.returns.ListUnresolved(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (h *ReturnHandler) ListResolved(c *gin.Context) {
	rows, err := h.returns.ListResolved(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, rows)
}

type updateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"adminNotes"`
}

func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request id")
		return
	}
	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	status, err := domain.ParseReturnStatus(body.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	updated, err := h.returns.SetStatus(c.Request.Context(), id, status, body.AdminNotes)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, "Status updated successfully", gin.H{"request": updated})
}

type updateNotesRequest struct {
	AdminNotes string `json:"adminNotes"`
}

func (h *ReturnHandler) UpdateNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request id")
		return
	}
	var body updateNotesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.returns.AddAdminNotes(c.Request.Context(), id, body.AdminNotes)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, "Notes updated successfully", gin.H{"request": updated})
}

func (h *ReturnHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, stats)
}

func (h *ReturnHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request id")
		return
	}
	if err := h.returns.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, "Return request deleted", nil)
}
