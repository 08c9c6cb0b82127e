package store

import (
	"context"
	"sort"
	"time"

	"carcool-backend/models"
	"carcool-backend/utils"

	"github.com/shopspring/decimal"
)

// DashboardStats counts today's bills and revenue and this month's bills, in now's
// location.
func (s *GormBackend) DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	dayStart := utils.BeginningOfDay(now)
	dayEnd := utils.EndOfDay(now)
	monthStart := utils.BeginningOfMonth(now)

	stats := DashboardStats{TodayRevenue: decimal.Zero}
	if err := db.Model(&models.Bill{}).
		Where("created_at BETWEEN ? AND ?", dayStart, dayEnd).
		Count(&stats.TodayBills).Error; err != nil {
		return nil, err
	}

	row := db.Model(&models.Bill{}).
		Where("created_at BETWEEN ? AND ?", dayStart, dayEnd).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&stats.TodayRevenue); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Bill{}).
		Where("created_at BETWEEN ? AND ?", monthStart, dayEnd).
		Count(&stats.MonthBills).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

type billAmount struct {
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
}

// BillTotals sums bills created in [start, end]. Monthly buckets use start's location
// and are returned in chronological order.
func (s *GormBackend) BillTotals(ctx context.Context, start, end time.Time) (*Totals, error) {
	var rows []billAmount
	err := s.db.WithContext(ctx).Model(&models.Bill{}).
		Select("created_at, total_amount").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := Totals{Revenue: decimal.Zero, Monthly: []MonthTotal{}}
	byMonth := make(map[string]*MonthTotal)
	for _, r := range rows {
		totals.BillCount++
		totals.Revenue = totals.Revenue.Add(r.TotalAmount)

		key := r.CreatedAt.In(start.Location()).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthTotal{Month: key, Total: decimal.Zero}
			byMonth[key] = m
		}
		m.Total = m.Total.Add(r.TotalAmount)
		m.Count++
	}
	for _, m := range byMonth {
		totals.Monthly = append(totals.Monthly, *m)
	}
	sort.Slice(totals.Monthly, func(i, j int) bool {
		return totals.Monthly[i].Month < totals.Monthly[j].Month
	})
	return &totals, nil
}

// BillsBetween returns bills with customer and car for exports.
func (s *GormBackend) BillsBetween(ctx context.Context, start, end time.Time) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Car").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC").
		Find(&bills).Error
	return bills, err
}
