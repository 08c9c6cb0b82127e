package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"carcool-backend/draft"
	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/store/storetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	mu      sync.Mutex
	fail    error
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, path, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.uploads[path] = data
	return "https://files.test/" + path, nil
}

func (f *fakeStorage) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) NotifyInvoice(_ context.Context, bill *models.Bill, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, bill.InvoiceNo+" "+url)
	return n.err
}

var errUploadDown = errors.New("storage unavailable")

type fixture struct {
	backend  *store.GormBackend
	storage  *fakeStorage
	notifier *recordingNotifier
	invoices *InvoiceService
	billing  *BillingService
	service  models.Service
	variant  models.InventoryVariant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := storetest.New(t)
	objects := newFakeStorage()
	notifier := &recordingNotifier{}
	invoices := NewInvoiceService(backend, objects, "Car Cool")
	return &fixture{
		backend:  backend,
		storage:  objects,
		notifier: notifier,
		invoices: invoices,
		billing:  NewBillingService(backend, invoices, notifier),
		service:  storetest.Service(t, backend, "Gas Refill"),
		variant:  storetest.Variant(t, backend, "Refrigerant", "R134a 1kg", 5),
	}
}

// readyDraft is service 500 + 2 parts at 100 + labor 50, at step 4.
func (f *fixture) readyDraft(t *testing.T, partQty int) draft.Draft {
	t.Helper()
	d := draft.New(uuid.NewString(), draft.ModeStrict).SetVehicle(draft.Vehicle{
		CarNumber:    "mh12ab1234",
		CustomerName: "Ravi",
		Mobile:       "9876543210",
		CarModel:     "Swift",
	})
	var err error
	d, err = d.Next()
	require.NoError(t, err)
	d = d.SetProblems(nil, true, "Noise from blower")
	d, err = d.Next()
	require.NoError(t, err)

	d = d.ToggleService(f.service.ID, f.service.ServiceName)
	d, err = d.SetServiceCharge(f.service.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	d, err = d.AddPart(f.service.ID, draft.Part{
		VariantID:    f.variant.ID,
		VariantName:  f.variant.VariantName,
		Quantity:     partQty,
		PricePerUnit: decimal.NewFromInt(100),
	}, 100)
	require.NoError(t, err)
	d, err = d.Next()
	require.NoError(t, err)
	d, err = d.SetCharges(decimal.NewFromInt(50), decimal.Zero, "")
	require.NoError(t, err)
	return d
}
