package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carcool-backend/draft"
	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/store/storetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) newDraft() string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/drafts", nil)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeDraft(h.t, w).Draft.ID
}

// fillDraft walks a draft to the charges step with one service and one part line.
func (h *harness) fillDraft(id string, svc models.Service, variant models.InventoryVariant, qty int) draftResponse {
	h.t.Helper()
	base := "/api/drafts/" + id

	steps := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPut, base + "/vehicle", gin.H{"carNumber": " mh12ab1234 ", "customerName": "Ravi", "mobile": "9876543210", "carModel": "Swift"}},
		{http.MethodPost, base + "/next", nil},
		{http.MethodPut, base + "/problems", gin.H{"problemIds": []string{}}},
		{http.MethodPost, base + "/next", nil},
		{http.MethodPost, base + "/services/" + svc.ID.String() + "/toggle", nil},
		{http.MethodPut, base + "/services/" + svc.ID.String() + "/charge", gin.H{"charge": 500}},
		{http.MethodPost, base + "/services/" + svc.ID.String() + "/parts", gin.H{"variantId": variant.ID, "quantity": qty, "pricePerUnit": 100}},
		{http.MethodPost, base + "/next", nil},
		{http.MethodPut, base + "/charges", gin.H{"laborCharge": 50, "extraCharge": 0}},
	}

	var last draftResponse
	for _, s := range steps {
		w := h.do(s.method, s.path, s.body)
		require.Equal(h.t, http.StatusOK, w.Code, "%s %s: %s", s.method, s.path, w.Body.String())
		last = decodeDraft(h.t, w)
	}
	return last
}

func TestDraftSubmitCreatesBill(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "AC Service")
	variant := storetest.Variant(t, h.backend, "Gas", "R134a", 10)

	id := h.newDraft()
	filled := h.fillDraft(id, svc, variant, 2)
	assert.Equal(t, draft.StepCharges, filled.Draft.Step)
	assert.Equal(t, "MH12AB1234", filled.Draft.Vehicle.CarNumber)
	assert.Equal(t, "750", filled.PreviewTotal)
	assert.Equal(t, 10, filled.Draft.Services[0].Parts[0].StockAtSelection)

	w := h.do(http.MethodPost, "/api/drafts/"+id+"/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "750", body["total"])
	assert.Equal(t, "completed", body["status"])
	assert.True(t, strings.HasPrefix(body["pdfUrl"].(string), filesBaseURL+"/invoices/"), body["pdfUrl"])

	assert.Equal(t, 8, storetest.Quantity(t, h.backend, variant))

	w = h.do(http.MethodGet, "/api/drafts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/api/bills/"+body["billId"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bill := decode(t, w)
	assert.Equal(t, models.InvoiceGenerated, bill["invoiceStatus"])
}

func TestDraftSubmitOutlivesClientDisconnect(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "AC Service")
	variant := storetest.Variant(t, h.backend, "Gas", "R134a", 10)
	id := h.newDraft()
	h.fillDraft(id, svc, variant, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/drafts/"+id+"/submit", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/bills/"+decode(t, w)["billId"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.InvoiceGenerated, decode(t, w)["invoiceStatus"])
}

func TestDraftRejectsInvalidMobile(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	id := h.newDraft()

	w := h.do(http.MethodPut, "/api/drafts/"+id+"/vehicle", gin.H{
		"carNumber": "MH12AB1234", "customerName": "Ravi", "mobile": "12345", "carModel": "Swift",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPost, "/api/drafts/"+id+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "mobile", body["field"])
	assert.Equal(t, "Enter valid 10-digit mobile number", body["error"])

	w = h.do(http.MethodGet, "/api/drafts/"+id, nil)
	assert.Equal(t, draft.StepVehicle, decodeDraft(t, w).Draft.Step)
}

func TestDraftRelaxedModeGatesOnlyProblems(t *testing.T) {
	h := newHarness(t, draft.ModeRelaxed)
	id := h.newDraft()

	w := h.do(http.MethodPost, "/api/drafts/"+id+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "carNumber", decode(t, w)["field"])

	w = h.do(http.MethodPut, "/api/drafts/"+id+"/vehicle", gin.H{
		"carNumber": "MH12AB1234", "customerName": "Ravi", "mobile": "9876543210", "carModel": "Swift",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/drafts/"+id+"/next", nil).Code)

	w = h.do(http.MethodPut, "/api/drafts/"+id+"/problems", gin.H{"problemIds": []string{}, "otherSelected": true, "otherProblem": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = h.do(http.MethodPost, "/api/drafts/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, draft.StepServices, decodeDraft(t, w).Draft.Step)
}

func TestDraftSubmitKeepsDraftOnStockShortage(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "Gas Refill")
	variant := storetest.Variant(t, h.backend, "Gas", "R134a", 5)

	id := h.newDraft()
	h.fillDraft(id, svc, variant, 3)

	// someone else used the gas in the meantime
	w := h.do(http.MethodPut, "/api/inventory/variants/"+variant.ID.String(), gin.H{"quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/drafts/"+id+"/submit", nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	assert.Equal(t, 1, storetest.Quantity(t, h.backend, variant))
	var bills int64
	h.backend.DB().Model(&models.Bill{}).Count(&bills)
	assert.Zero(t, bills)

	w = h.do(http.MethodGet, "/api/drafts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "850", decodeDraft(t, w).PreviewTotal)
}

func TestDraftAddPartChecksStock(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "AC Service")
	variant := storetest.Variant(t, h.backend, "Filter", "Cabin", 1)

	id := h.newDraft()
	w := h.do(http.MethodPost, "/api/drafts/"+id+"/services/"+svc.ID.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPost, "/api/drafts/"+id+"/services/"+svc.ID.String()+"/parts", gin.H{
		"variantId": variant.ID, "quantity": 2, "pricePerUnit": 300,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "quantity", decode(t, w)["field"])
}

func TestDraftToggleServiceOffDropsParts(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "AC Service")
	variant := storetest.Variant(t, h.backend, "Gas", "R32", 4)

	id := h.newDraft()
	toggle := "/api/drafts/" + id + "/services/" + svc.ID.String() + "/toggle"
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, toggle, nil).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/drafts/"+id+"/services/"+svc.ID.String()+"/parts", gin.H{
		"variantId": variant.ID, "quantity": 1, "pricePerUnit": 100,
	}).Code)

	w := h.do(http.MethodPost, toggle, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeDraft(t, w).Draft.Services)

	w = h.do(http.MethodPost, toggle, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeDraft(t, w)
	require.Len(t, got.Draft.Services, 1)
	assert.Empty(t, got.Draft.Services[0].Parts)
	assert.Equal(t, "0", got.PreviewTotal)
}

func TestDraftLookup(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	svc := storetest.Service(t, h.backend, "AC Service")
	variant := storetest.Variant(t, h.backend, "Gas", "R134a", 10)

	first := h.newDraft()
	h.fillDraft(first, svc, variant, 1)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/drafts/"+first+"/submit", nil).Code)

	id := h.newDraft()
	w := h.do(http.MethodPost, "/api/drafts/"+id+"/lookup", gin.H{"carNumber": "mh12ab1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeDraft(t, w).Draft
	assert.Equal(t, "Ravi", got.Vehicle.CustomerName)
	assert.Equal(t, "9876543210", got.Vehicle.Mobile)
	assert.Equal(t, "Swift", got.Vehicle.CarModel)
	assert.Empty(t, got.Notice)

	w = h.do(http.MethodPost, "/api/drafts/"+id+"/lookup", gin.H{"carNumber": "KA01ZZ0001"})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeDraft(t, w).Draft
	assert.Equal(t, draft.NoticeCarNotFound, got.Notice)
	assert.Equal(t, "Ravi", got.Vehicle.CustomerName)
}

type brokenLookupBackend struct {
	*store.GormBackend
}

func (brokenLookupBackend) VehicleByNumber(context.Context, string) (*models.Car, error) {
	return nil, errors.New("connection reset")
}

func TestDraftLookupFailureLeavesDraft(t *testing.T) {
	h := newHarnessWithLookup(t, draft.ModeStrict, func(b *store.GormBackend) store.Backend {
		return brokenLookupBackend{b}
	})
	id := h.newDraft()
	w := h.do(http.MethodPut, "/api/drafts/"+id+"/vehicle", gin.H{
		"carNumber": "MH12AB1234", "customerName": "Ravi", "mobile": "9876543210", "carModel": "Swift",
	})
	require.Equal(t, http.StatusOK, w.Code)
	before := decodeDraft(t, w).Draft

	w = h.do(http.MethodPost, "/api/drafts/"+id+"/lookup", gin.H{"carNumber": "KA01ZZ0001"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Error fetching car", decode(t, w)["error"])

	w = h.do(http.MethodGet, "/api/drafts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	after := decodeDraft(t, w).Draft
	assert.Equal(t, before.Vehicle, after.Vehicle)
	assert.Empty(t, after.Notice)
}

func TestDraftRequiresAuth(t *testing.T) {
	h := newHarness(t, draft.ModeStrict)
	id := h.newDraft()

	w := h.send(http.MethodGet, "/api/drafts/"+id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
