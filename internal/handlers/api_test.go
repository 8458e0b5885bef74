package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovaflow-backend/internal/config"
	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/handlers"
	"renovaflow-backend/internal/lifecycle"
	"renovaflow-backend/internal/middleware"
	"renovaflow-backend/internal/models"
	"renovaflow-backend/internal/services"
)

type testServer struct {
	router *gin.Engine
	store  *database.Store
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret: "test-secret",
		UploadDir: t.TempDir(),
	}

	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())

	docSync := services.NewDocSync(nil, zerolog.Nop())
	engine := lifecycle.NewEngine(store)

	authHandler := handlers.NewAuthHandler(store, cfg)
	projectsHandler := handlers.NewProjectsHandler(store, engine, docSync)
	billingHandler := handlers.NewBillingHandler(store, engine)
	filesHandler := handlers.NewFilesHandler(store, docSync, cfg.UploadDir)
	usersHandler := handlers.NewUsersHandler(store)

	router := gin.New()
	router.POST("/api/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	api.GET("/projects", projectsHandler.ListProjects)
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.PATCH("/projects/:id", projectsHandler.PatchProject)
	api.PUT("/projects/:id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:id", projectsHandler.DeleteProject)
	api.PATCH("/billing_items/:id", billingHandler.PatchBillingItem)
	api.PATCH("/outbound_payments/:id", billingHandler.PatchOutboundPayment)
	api.POST("/projects/:id/files", filesHandler.Upload)
	api.DELETE("/files/:id", filesHandler.Delete)
	api.GET("/users", usersHandler.ListUsers)
	api.POST("/users", usersHandler.CreateUser)
	api.PUT("/users/:id", usersHandler.UpdateUser)
	api.DELETE("/users/:id", usersHandler.DeleteUser)

	ts := &testServer{router: router, store: store}

	require.NoError(t, store.CreateUser(&models.User{
		ID: "admin", Email: "admin@example.com", Password: "admin-pw",
		Name: "Admin", Role: models.RoleAdmin, IsActive: true,
	}))

	w := ts.do(t, http.MethodPost, "/api/login",
		models.LoginRequest{Email: "admin@example.com", Password: "admin-pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	ts.token = login.Token

	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) getProject(t *testing.T, id string) models.Project {
	t.Helper()
	w := ts.do(t, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func sampleProjectBody(id string) models.Project {
	return models.Project{
		ID:             id,
		Title:          "Bathroom remodel",
		EstimateDate:   "2025-02-01",
		CompletionDate: "2025-05-15",
		CustomerName:   "Yamada",
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/login",
		models.LoginRequest{Email: "admin@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/login",
		models.LoginRequest{Email: "ghost@example.com", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.store.CreateUser(&models.User{
		ID: "u2", Email: "former@example.com", Password: "pw",
		Name: "Former", Role: models.RoleStaff, IsActive: false,
	}))

	// Correct credentials still fail once the account is deactivated.
	w := ts.do(t, http.MethodPost, "/api/login",
		models.LoginRequest{Email: "former@example.com", Password: "pw"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjects_MissingToken(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""

	w := ts.do(t, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndFetchProject(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.BillingItems = []models.BillingItem{{ID: "b1", Name: "Tiling", Amount: 80000}}
	w := ts.do(t, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	p := ts.getProject(t, "p1")
	assert.Equal(t, lifecycle.StatusEstimate, p.Status, "status defaults to estimate")
	require.Len(t, p.BillingItems, 1)
	assert.Equal(t, "b1", p.BillingItems[0].ID)
}

func TestCreateProject_MissingDates(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.EstimateDate = ""
	w := ts.do(t, http.MethodPost, "/api/projects", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProject_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchProject_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPatch, "/api/projects/missing",
		map[string]string{"status": "billing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchProject_StatusAndRemarks(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, "/api/projects", sampleProjectBody("p1")).Code)

	w := ts.do(t, http.MethodPatch, "/api/projects/p1", map[string]string{
		"status":          "construction",
		"estimateRemarks": "estimate accepted by phone",
	})
	require.Equal(t, http.StatusOK, w.Code)

	p := ts.getProject(t, "p1")
	assert.Equal(t, lifecycle.StatusConstruction, p.Status)
	assert.Equal(t, "estimate accepted by phone", p.EstimateRemarks)
}

func TestPatchProject_UnknownStatus(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, "/api/projects", sampleProjectBody("p1")).Code)

	w := ts.do(t, http.MethodPatch, "/api/projects/p1",
		map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// The spec's end-to-end billing scenario: two unbilled items, project in
// billing; billing the first leaves the status alone, billing the second
// advances it to payment_in.
func TestBillingAutoAdvance(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.BillingItems = []models.BillingItem{
		{ID: "b1", Name: "Materials", Amount: 100000},
		{ID: "b2", Name: "Labor", Amount: 250000},
	}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/projects", body).Code)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPatch, "/api/projects/p1", map[string]string{"status": "billing"}).Code)

	w := ts.do(t, http.MethodPatch, "/api/billing_items/b1", map[string]bool{"isBilled": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lifecycle.StatusBilling, ts.getProject(t, "p1").Status)

	w = ts.do(t, http.MethodPatch, "/api/billing_items/b2", map[string]bool{"isBilled": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lifecycle.StatusPaymentIn, ts.getProject(t, "p1").Status)
}

func TestBillingAutoAdvance_OnlyFromBillingStatus(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.BillingItems = []models.BillingItem{{ID: "b1", Name: "Materials"}}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/projects", body).Code)

	// Project still in estimate: billing the last item must not advance.
	w := ts.do(t, http.MethodPatch, "/api/billing_items/b1", map[string]bool{"isBilled": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lifecycle.StatusEstimate, ts.getProject(t, "p1").Status)
}

func TestBillingFlags_FalseIgnored(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.BillingItems = []models.BillingItem{{ID: "b1", Name: "Materials"}}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/projects", body).Code)

	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPatch, "/api/billing_items/b1", map[string]bool{"isBilled": true}).Code)

	// There is no API path that unsets a flag.
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPatch, "/api/billing_items/b1", map[string]bool{"isBilled": false}).Code)
	assert.True(t, ts.getProject(t, "p1").BillingItems[0].IsBilled)
}

func TestOutboundPaymentPaid(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.OutboundPayments = []models.OutboundPayment{{ID: "o1", Payee: "Lumber Co", Amount: 45000}}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/projects", body).Code)

	w := ts.do(t, http.MethodPatch, "/api/outbound_payments/o1", map[string]bool{"isPaid": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ts.getProject(t, "p1").OutboundPayments[0].IsPaid)
}

// Full update supplying zero staff where two existed: the stored staff
// collection becomes empty.
func TestFullUpdateClearsStaff(t *testing.T) {
	ts := newTestServer(t)

	body := sampleProjectBody("p1")
	body.ConstructionStaff = []models.ConstructionStaff{{Name: "Sato"}, {Name: "Suzuki"}}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/projects", body).Code)
	require.Len(t, ts.getProject(t, "p1").ConstructionStaff, 2)

	updated := sampleProjectBody("p1")
	updated.Status = lifecycle.StatusOrder
	w := ts.do(t, http.MethodPut, "/api/projects/p1", updated)
	require.Equal(t, http.StatusOK, w.Code)

	p := ts.getProject(t, "p1")
	assert.Empty(t, p.ConstructionStaff)
	assert.Equal(t, lifecycle.StatusOrder, p.Status)
}

func TestDeleteProject(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, "/api/projects", sampleProjectBody("p1")).Code)

	w := ts.do(t, http.MethodDelete, "/api/projects/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/projects/p1", nil).Code)

	// Deleting again is still a success.
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/projects/p1", nil).Code)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/users", models.UserRequest{
		Email: "admin@example.com", Password: "pw", Name: "Dup",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers_ExcludesPassword(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "admin-pw")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestFileUploadAndDelete(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, "/api/projects", sampleProjectBody("p1")).Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "estimate.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/projects/p1/files", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FileUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "estimate.pdf", resp.Name)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, fmt.Sprintf("/uploads/%s_estimate.pdf", resp.ID), resp.URL)

	p := ts.getProject(t, "p1")
	require.Len(t, p.Files, 1)

	del := ts.do(t, http.MethodDelete, "/api/files/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, del.Code)
	assert.Empty(t, ts.getProject(t, "p1").Files)
}

func TestFileUpload_NoFile(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, "/api/projects", sampleProjectBody("p1")).Code)

	w := ts.do(t, http.MethodPost, "/api/projects/p1/files", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileUpload_ProjectNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/projects/missing/files", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
