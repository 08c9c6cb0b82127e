package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carcool-backend/store"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reconcileMinAge      = 5 * time.Minute
	reconcileMaxAttempts = 5
	reconcileBatch       = 50
	reconcileWorkers     = 4
)

// Reconciler regenerates invoices for bills that were saved without a PDF.
type Reconciler struct {
	backend  store.Backend
	invoices invoiceGenerator
	notifier Notifier
	pool     *ants.Pool
	cron     *cron.Cron
	now      func() time.Time
	running  int32
}

func NewReconciler(backend store.Backend, invoices invoiceGenerator, notifier Notifier) (*Reconciler, error) {
	pool, err := ants.NewPool(reconcileWorkers)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		backend:  backend,
		invoices: invoices,
		notifier: notifier,
		pool:     pool,
		now:      time.Now,
	}, nil
}

// Start schedules RunOnce with a standard five-field cron spec.
func (r *Reconciler) Start(schedule string) error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(schedule, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			zap.L().Error("invoice reconcile failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	zap.L().Info("invoice reconciler started", zap.String("schedule", schedule))
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.pool.Release()
}

// RunOnce retries one batch and returns how many invoices were generated. Overlapping
// runs are skipped.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return 0, nil
	}
	defer atomic.StoreInt32(&r.running, 0)

	ids, err := r.backend.PendingInvoices(ctx, r.now().Add(-reconcileMinAge), reconcileMaxAttempts, reconcileBatch)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		wg        sync.WaitGroup
		generated int64
	)
	for _, id := range ids {
		billID := id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if r.regenerate(ctx, billID) {
				atomic.AddInt64(&generated, 1)
			}
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			zap.L().Error("failed to queue invoice retry", zap.String("bill_id", billID.String()), zap.Error(err))
		}
	}
	wg.Wait()

	zap.L().Info("invoice reconcile finished",
		zap.Int("candidates", len(ids)),
		zap.Int64("generated", generated))
	return int(generated), nil
}

func (r *Reconciler) regenerate(ctx context.Context, billID uuid.UUID) bool {
	out, err := r.invoices.Generate(ctx, billID)
	if err != nil {
		return false
	}
	if r.notifier != nil {
		if err := r.notifier.NotifyInvoice(ctx, out.Bill, out.URL); err != nil {
			zap.L().Warn("invoice notification failed", zap.String("bill_id", billID.String()), zap.Error(err))
		}
	}
	return true
}
