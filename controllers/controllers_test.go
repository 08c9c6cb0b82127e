package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carcool-backend/controllers"
	"carcool-backend/draft"
	"carcool-backend/routes"
	"carcool-backend/services"
	"carcool-backend/storage"
	"carcool-backend/store"
	"carcool-backend/store/storetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testEmail    = "owner@carcool.test"
	testPassword = "garage-pass-1"
	filesBaseURL = "http://files.test"
)

type harness struct {
	t       *testing.T
	backend *store.GormBackend
	router  *gin.Engine
	token   string
}

func newHarness(t *testing.T, mode draft.Mode) *harness {
	t.Helper()
	return newHarnessWithLookup(t, mode, nil)
}

// newHarnessWithLookup lets a test answer vehicle lookups from another backend.
func newHarnessWithLookup(t *testing.T, mode draft.Mode, wrap func(*store.GormBackend) store.Backend) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := storetest.New(t)
	_, err := backend.EnsureUser(context.Background(), testEmail, testPassword, "Owner")
	require.NoError(t, err)

	objects, err := storage.NewLocalStorage(t.TempDir(), filesBaseURL)
	require.NoError(t, err)

	invoices := services.NewInvoiceService(backend, objects, "Test Car Cool")
	billing := services.NewBillingService(backend, invoices, nil)
	var lookupBackend store.Backend = backend
	if wrap != nil {
		lookupBackend = wrap(backend)
	}
	lookup := services.NewLookupService(lookupBackend)
	sessions := services.NewMemorySessionStore()

	router := routes.SetupRouter(routes.Handlers{
		Auth:          controllers.NewAuthController(backend, sessions, testSecret, time.Hour, false),
		Drafts:        controllers.NewDraftController(draft.NewMemoryStore(time.Hour), lookup, billing, backend, mode),
		Bills:         controllers.NewBillController(backend, invoices, nil),
		Reports:       controllers.NewReportController(backend),
		Dashboard:     controllers.NewDashboardController(backend),
		Inventory:     controllers.NewInventoryController(backend),
		Services:      controllers.NewServiceController(backend),
		Customers:     controllers.NewCustomerController(backend),
		Profile:       controllers.NewProfileController(backend),
		Notifications: controllers.NewNotificationController(backend),
		JWTSecret:     testSecret,
		Revocations:   sessions,
	})

	h := &harness{t: t, backend: backend, router: router}
	h.token = h.login(testPassword)
	return h
}

func (h *harness) login(password string) string {
	h.t.Helper()
	w := h.send(http.MethodPost, "/auth/login", gin.H{"email": testEmail, "password": password}, "")
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func (h *harness) send(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// do sends an authenticated request.
func (h *harness) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.send(method, path, body, h.token)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// draftResponse is the envelope every draft endpoint returns.
type draftResponse struct {
	Draft        draft.Draft `json:"draft"`
	PreviewTotal string      `json:"previewTotal"`
}

func decodeDraft(t *testing.T, w *httptest.ResponseRecorder) draftResponse {
	t.Helper()
	var out draftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
