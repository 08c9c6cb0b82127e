// Package store holds the backend procedures the bill workflow calls: customer and car
// upserts, atomic bill creation, invoice bookkeeping, reporting and inventory.
package store

import (
	"context"
	"errors"
	"time"

	"carcool-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownService    = errors.New("unknown service")
	ErrUnknownVariant    = errors.New("unknown inventory variant")
	ErrInvalidBill       = errors.New("invalid bill")
	ErrDuplicate         = errors.New("already exists")
)

// Backend is everything the HTTP layer and the services need from the database.
type Backend interface {
	UpsertCustomer(ctx context.Context, name, mobile string) (*models.Customer, error)
	UpsertCar(ctx context.Context, carNumber, carModel string, customerID uuid.UUID) (*models.Car, error)
	VehicleByNumber(ctx context.Context, carNumber string) (*models.Car, error)
	ListCustomers(ctx context.Context, search string, limit, offset int) ([]models.Customer, int64, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)

	CreateFullBill(ctx context.Context, in BillInput) (*CreatedBill, error)
	BillBreakdown(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	ListBills(ctx context.Context, f BillFilter) ([]models.Bill, int64, error)
	RecordInvoiceFile(ctx context.Context, billID uuid.UUID, url string) error
	MarkInvoiceFailed(ctx context.Context, billID uuid.UUID, reason string) error
	PendingInvoices(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]uuid.UUID, error)

	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
	BillTotals(ctx context.Context, start, end time.Time) (*Totals, error)
	BillsBetween(ctx context.Context, start, end time.Time) ([]models.Bill, error)

	ListProducts(ctx context.Context) ([]models.InventoryProduct, error)
	CreateProduct(ctx context.Context, name string) (*models.InventoryProduct, error)
	ListVariants(ctx context.Context, productID *uuid.UUID) ([]models.InventoryVariant, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*models.InventoryVariant, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, name string, quantity int) (*models.InventoryVariant, error)
	UpdateVariantQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.InventoryVariant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	ActiveServices(ctx context.Context) ([]models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	CreateService(ctx context.Context, name string) (*models.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, name *string, active *bool) (*models.Service, error)
	ProblemTypes(ctx context.Context) ([]models.ProblemType, error)

	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	EnsureUser(ctx context.Context, email, password, name string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, name *string, password *string) (*models.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	NotificationTemplates(ctx context.Context) ([]models.NotificationTemplate, error)
	NotificationTemplate(ctx context.Context, kind string) (*models.NotificationTemplate, error)
	SaveNotificationTemplate(ctx context.Context, kind string, message *string, active *bool) (*models.NotificationTemplate, error)
	LogNotification(ctx context.Context, entry *models.NotificationLog) error
	NotificationLogs(ctx context.Context, billID uuid.UUID) ([]models.NotificationLog, error)
}

// GormBackend implements Backend on postgres (production) or sqlite (local and tests).
type GormBackend struct {
	db *gorm.DB
}

var _ Backend = (*GormBackend)(nil)

func New(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (s *GormBackend) DB() *gorm.DB { return s.db }

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Car{},
		&models.Service{},
		&models.ProblemType{},
		&models.InventoryProduct{},
		&models.InventoryVariant{},
		&models.Bill{},
		&models.Problem{},
		&models.BillService{},
		&models.BillServicePart{},
		&models.BillFile{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
	); err != nil {
		return err
	}
	// bill parts used to reference inventory_variants, which blocked deleting billed stock
	m := db.Migrator()
	if m.HasConstraint(&models.BillServicePart{}, legacyPartVariantFK) {
		return m.DropConstraint(&models.BillServicePart{}, legacyPartVariantFK)
	}
	return nil
}

const legacyPartVariantFK = "fk_bill_service_parts_variant"

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type DashboardStats struct {
	TodayBills   int64           `json:"todayBills"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
	MonthBills   int64           `json:"monthBills"`
}

type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type Totals struct {
	BillCount int64           `json:"billCount"`
	Revenue   decimal.Decimal `json:"revenue"`
	Monthly   []MonthTotal    `json:"monthly"`
}
