package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	returnrepo "github.com/atacadao/guanabara-backend/internal/data/repos/returns"
	"github.com/atacadao/guanabara-backend/internal/data/repos/testutil"
	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/handlers"
	"github.com/atacadao/guanabara-backend/internal/server"
	"github.com/atacadao/guanabara-backend/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := returnrepo.NewReturnRequestRepo(db, log)
	store, err := services.NewLocalEvidenceStore(log, t.TempDir(), "/uploads/returns", 10*time.Second)
	if err != nil {
		t.Fatalf("NewLocalEvidenceStore: %v", err)
	}
	returns := services.NewReturnService(db, log, repo, store, false)
	stats := services.NewStatsService(log, repo, nil, 0)

	router := server.NewRouter(server.RouterConfig{
		ReturnHandler: handlers.NewReturnHandler(log, returns, stats),
		AllowOrigins:  []string{"http://localhost:3000"},
	})
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Body.String(), "{") {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func multipartCreate(t *testing.T, router *gin.Engine, fields map[string]string, photos map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for name, content := range photos {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/returns", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, decoded
}

func validForm() map[string]string {
	return map[string]string{
		"orderId":     "ORD-1001",
		"userName":    "Maria Silva",
		"userEmail":   "maria@example.com",
		"userPhone":   "+55 21 99999-0000",
		"productName": "Arroz Tipo 1 5kg",
		"quantity":    "2",
		"requestType": "REFUND",
		"reason":      "defective",
	}
}

func TestCreateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := multipartCreate(t, router, validForm(), map[string]string{"front.jpg": "photo bytes"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d (%s)", w.Code, w.Body.String())
	}
	if body["success"] != true {
		t.Fatalf("envelope: want success=true, got %v", body)
	}
	if body["message"] != "Return request submitted successfully" {
		t.Fatalf("message: %v", body["message"])
	}
	if _, err := uuid.Parse(body["requestId"].(string)); err != nil {
		t.Fatalf("requestId is not a uuid: %v", body["requestId"])
	}

	request, ok := body["request"].(map[string]any)
	if !ok {
		t.Fatalf("missing request payload: %v", body)
	}
	if request["status"] != string(domain.StatusPending) {
		t.Fatalf("new request status: %v", request["status"])
	}
	photos, ok := request["photoUrls"].([]any)
	if !ok || len(photos) != 1 {
		t.Fatalf("photoUrls: %v", request["photoUrls"])
	}
	if !strings.HasPrefix(photos[0].(string), "/uploads/returns/") {
		t.Fatalf("photo ref missing public prefix: %v", photos[0])
	}
}

func TestCreateEndpointRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	form := validForm()
	form["quantity"] = "zero"
	w, body := multipartCreate(t, router, form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("envelope: want success=false, got %v", body)
	}

	form = validForm()
	form["requestType"] = "STORE_CREDIT"
	w, _ = multipartCreate(t, router, form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d", w.Code)
	}
}

func TestGetByIDEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	row := testutil.SeedReturnRequest(t, context.Background(), db, nil)

	w, body := doJSON(t, router, http.MethodGet, "/api/returns/"+row.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	if body["id"] != row.ID.String() {
		t.Fatalf("id: want %s got %v", row.ID, body["id"])
	}

	w, body = doJSON(t, router, http.MethodGet, "/api/returns/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: want 404 got %d", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("error envelope: %v", body)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/returns/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: want 400 got %d", w.Code)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	row := testutil.SeedReturnRequest(t, context.Background(), db, nil)
	path := fmt.Sprintf("/api/returns/%s/status", row.ID)

	w, body := doJSON(t, router, http.MethodPut, path, gin.H{"status": "UNDER_REVIEW", "adminNotes": "checking"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d (%s)", w.Code, w.Body.String())
	}
	request := body["request"].(map[string]any)
	if request["status"] != string(domain.StatusUnderReview) {
		t.Fatalf("updated status: %v", request["status"])
	}
	if request["adminNotes"] != "checking" {
		t.Fatalf("adminNotes: %v", request["adminNotes"])
	}

	w, _ = doJSON(t, router, http.MethodPut, path, gin.H{"status": "APPROVED"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: want 200 got %d", w.Code)
	}

	// Terminal state rejects further transitions.
	w, body = doJSON(t, router, http.MethodPut, path, gin.H{"status": "REJECTED"})
	if w.Code != http.StatusConflict {
		t.Fatalf("terminal transition: want 409 got %d", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("error envelope: %v", body)
	}

	w, _ = doJSON(t, router, http.MethodPut, path, gin.H{"status": "SHIPPED"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: want 400 got %d", w.Code)
	}
}

func TestUpdateNotesEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	row := testutil.SeedReturnRequest(t, context.Background(), db, func(r *domain.ReturnRequest) {
		r.AdminNotes = "old note"
	})

	path := fmt.Sprintf("/api/returns/%s/notes", row.ID)
	w, body := doJSON(t, router, http.MethodPut, path, gin.H{"adminNotes": "new note"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	request := body["request"].(map[string]any)
	if request["adminNotes"] != "new note" {
		t.Fatalf("notes must overwrite: %v", request["adminNotes"])
	}
}

func TestListEndpoints(t *testing.T) {
	router, db := newTestRouter(t)
	ctx := context.Background()
	testutil.SeedReturnRequest(t, ctx, db, nil)
	testutil.SeedReturnRequest(t, ctx, db, func(r *domain.ReturnRequest) {
		r.Status = domain.StatusApproved
		now := time.Now().UTC()
		r.ResolvedAt = &now
	})

	cases := []struct {
		path string
		want int
	}{
		{"/api/returns", 2},
		{"/api/returns/pending", 1},
		{"/api/returns/unresolved", 1},
		{"/api/returns/resolved", 1},
		{"/api/returns/recent", 2},
		{"/api/returns/status/APPROVED", 1},
		{"/api/returns/type/REFUND", 2},
		{"/api/returns/order/ORD-1", 2},
		{"/api/returns/user/maria@example.com", 2},
		{"/api/returns/user/name/silva", 2},
		{"/api/returns/product/arroz", 2},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want 200 got %d (%s)", tc.path, w.Code, w.Body.String())
		}
		var rows []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
			t.Fatalf("%s: decode list: %v", tc.path, err)
		}
		if len(rows) != tc.want {
			t.Fatalf("%s: want %d rows got %d", tc.path, tc.want, len(rows))
		}
	}
}

func TestListByPeriodEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	ctx := context.Background()
	created := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	testutil.SeedReturnRequest(t, ctx, db, func(r *domain.ReturnRequest) { r.CreatedAt = created })

	path := "/api/returns/period?start=2026-08-01T00:00:00Z&end=2026-08-31T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row in period, got %d", len(rows))
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/returns/period?start=yesterday&end=today", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad timestamps: want 400 got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	ctx := context.Background()
	testutil.SeedReturnRequest(t, ctx, db, nil)
	testutil.SeedReturnRequest(t, ctx, db, func(r *domain.ReturnRequest) { r.Status = domain.StatusApproved })

	w, body := doJSON(t, router, http.MethodGet, "/api/returns/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	if body["totalRequests"] != float64(2) {
		t.Fatalf("totalRequests: %v", body["totalRequests"])
	}
	if body["pendingPercentage"] != float64(50) || body["approvedPercentage"] != float64(50) {
		t.Fatalf("percentages: %v", body)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	row := testutil.SeedReturnRequest(t, context.Background(), db, nil)
	path := "/api/returns/" + row.ID.String()

	w, body := doJSON(t, router, http.MethodDelete, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	if body["success"] != true {
		t.Fatalf("envelope: %v", body)
	}

	w, _ = doJSON(t, router, http.MethodGet, path, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted row still served: %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, path, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: want 404 got %d", w.Code)
	}
}
