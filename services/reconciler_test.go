package services

import (
	"context"
	"testing"
	"time"

	"carcool-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerCompletesFailedInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.setFail(errUploadDown)

	result, err := f.billing.Submit(ctx, f.readyDraft(t, 1))
	require.NoError(t, err)
	require.Equal(t, StatusInvoicePending, result.Status)

	r, err := NewReconciler(f.backend, f.invoices, f.notifier)
	require.NoError(t, err)
	defer r.Stop()

	// too recent to retry
	n, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	r.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	f.storage.setFail(nil)

	n, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bill, err := f.backend.BillBreakdown(ctx, result.BillID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceGenerated, bill.InvoiceStatus)
	require.Len(t, bill.Files, 1)
	assert.Len(t, f.notifier.calls, 1)

	n, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconcilerGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.setFail(errUploadDown)

	result, err := f.billing.Submit(ctx, f.readyDraft(t, 1))
	require.NoError(t, err)

	r, err := NewReconciler(f.backend, f.invoices, nil)
	require.NoError(t, err)
	defer r.Stop()
	r.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	for i := 0; i < reconcileMaxAttempts; i++ {
		_, err := r.RunOnce(ctx)
		require.NoError(t, err)
	}

	bill, err := f.backend.BillBreakdown(ctx, result.BillID)
	require.NoError(t, err)
	assert.Equal(t, reconcileMaxAttempts, bill.InvoiceAttempts)

	ids, err := f.backend.PendingInvoices(ctx, r.now(), reconcileMaxAttempts, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReconcilerRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	r, err := NewReconciler(f.backend, f.invoices, nil)
	require.NoError(t, err)
	defer r.Stop()
	assert.Error(t, r.Start("not a schedule"))
}
