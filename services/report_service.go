package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yeremiapane/billiard-pos/models"
)

const (
	topProductLimit = 10
	dateFormat      = "2006-01-02"
)

// ReportService reads settled transactions and the inventory ledger. It never writes.
type ReportService struct {
	*base
}

type PaymentTotal struct {
	Method string  `json:"method"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type ProductSales struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	DaysSold  int     `json:"days_sold,omitempty"`
}

// DailyReport summarises one calendar day.
type DailyReport struct {
	Date             string         `json:"date"`
	TotalRevenue     float64        `json:"total_revenue"`
	TimeRevenue      float64        `json:"time_revenue"`
	ProductRevenue   float64        `json:"product_revenue"`
	TransactionCount int            `json:"transaction_count"`
	Payments         []PaymentTotal `json:"payments"`
	TopProducts      []ProductSales `json:"top_products"`
	CostOfGoods      float64        `json:"cost_of_goods"`
	NetIncome        float64        `json:"net_income"`
	ProfitMargin     float64        `json:"profit_margin"`
}

// RevenueBucket is the transaction total of one day or one ISO week.
type RevenueBucket struct {
	Date             string  `json:"date,omitempty"`
	Week             int     `json:"week,omitempty"`
	TransactionCount int     `json:"transaction_count"`
	TotalRevenue     float64 `json:"total_revenue"`
	TimeRevenue      float64 `json:"time_revenue"`
	ProductRevenue   float64 `json:"product_revenue"`
}

type TableIncome struct {
	TableID          uint    `json:"table_id"`
	TransactionCount int     `json:"transaction_count"`
	TimeRevenue      float64 `json:"time_revenue"`
	ProductRevenue   float64 `json:"product_revenue"`
	TotalRevenue     float64 `json:"total_revenue"`
}

// PeriodReport summarises a week or a month. EndDate is inclusive.
type PeriodReport struct {
	StartDate           string          `json:"start_date"`
	EndDate             string          `json:"end_date"`
	TotalRevenue        float64         `json:"total_revenue"`
	TimeRevenue         float64         `json:"time_revenue"`
	ProductRevenue      float64         `json:"product_revenue"`
	TransactionCount    int             `json:"transaction_count"`
	AverageDailyRevenue float64         `json:"average_daily_revenue"`
	Payments            []PaymentTotal  `json:"payments"`
	CostOfGoods         float64         `json:"cost_of_goods"`
	NetIncome           float64         `json:"net_income"`
	ProfitMargin        float64         `json:"profit_margin"`
	Daily               []RevenueBucket `json:"daily"`
	Weekly              []RevenueBucket `json:"weekly,omitempty"`
	Tables              []TableIncome   `json:"tables"`
	TopProducts         []ProductSales  `json:"top_products"`
}

// ProductSalesReport lists every product sold between two dates, best sellers first.
type ProductSalesReport struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Products  []ProductSales `json:"products"`
}

// figures is the shared aggregation behind every report.
type figures struct {
	trxs           []models.Transaction
	count          int
	revenue        float64
	timeRevenue    float64
	productRevenue float64
	payments       []PaymentTotal
	products       []ProductSales
	cogs           float64
}

func (f *figures) netIncome() float64 {
	return round2(f.revenue - f.cogs)
}

func (f *figures) margin() float64 {
	if f.revenue <= 0 {
		return 0
	}
	return round2(f.netIncome() / f.revenue * 100)
}

func (f *figures) top() []ProductSales {
	if len(f.products) > topProductLimit {
		return f.products[:topProductLimit]
	}
	return f.products
}

// DailyReport aggregates the day containing day, in day's location. Product figures come
// from net "sale" ledger rows, so voided orders cancel out.
func (s *ReportService) DailyReport(ctx context.Context, day time.Time) (*DailyReport, error) {
	start := startOfDay(day)
	f, err := s.aggregate(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &DailyReport{
		Date:             start.Format(dateFormat),
		TotalRevenue:     f.revenue,
		TimeRevenue:      f.timeRevenue,
		ProductRevenue:   f.productRevenue,
		TransactionCount: f.count,
		Payments:         f.payments,
		TopProducts:      f.top(),
		CostOfGoods:      f.cogs,
		NetIncome:        f.netIncome(),
		ProfitMargin:     f.margin(),
	}, nil
}

// WeeklyReport covers the seven days starting at start.
func (s *ReportService) WeeklyReport(ctx context.Context, start time.Time) (*PeriodReport, error) {
	from := startOfDay(start)
	return s.periodReport(ctx, from, from.AddDate(0, 0, 7), false)
}

// MonthlyReport covers one calendar month in loc, with an extra per ISO week breakdown.
func (s *ReportService) MonthlyReport(ctx context.Context, year int, month time.Month, loc *time.Location) (*PeriodReport, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month", fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if loc == nil {
		loc = time.Local
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return s.periodReport(ctx, from, from.AddDate(0, 1, 0), true)
}

// ProductSales lists product sales for the inclusive date range from..to.
func (s *ReportService) ProductSales(ctx context.Context, from, to time.Time) (*ProductSalesReport, error) {
	start, last := startOfDay(from), startOfDay(to)
	if last.Before(start) {
		return nil, invalid("endDate", "must not be before startDate")
	}
	f, err := s.aggregate(ctx, start, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &ProductSalesReport{
		StartDate: start.Format(dateFormat),
		EndDate:   last.Format(dateFormat),
		Products:  f.products,
	}, nil
}

func (s *ReportService) periodReport(ctx context.Context, from, end time.Time, weekly bool) (*PeriodReport, error) {
	f, err := s.aggregate(ctx, from, end)
	if err != nil {
		return nil, err
	}

	days := 0
	for d := from; d.Before(end); d = d.AddDate(0, 0, 1) {
		days++
	}

	report := &PeriodReport{
		StartDate:        from.Format(dateFormat),
		EndDate:          end.AddDate(0, 0, -1).Format(dateFormat),
		TotalRevenue:     f.revenue,
		TimeRevenue:      f.timeRevenue,
		ProductRevenue:   f.productRevenue,
		TransactionCount: f.count,
		Payments:         f.payments,
		CostOfGoods:      f.cogs,
		NetIncome:        f.netIncome(),
		ProfitMargin:     f.margin(),
		Daily:            []RevenueBucket{},
		Tables:           []TableIncome{},
		TopProducts:      f.top(),
	}
	if days > 0 {
		report.AverageDailyRevenue = round2(f.revenue / float64(days))
	}

	daily := make(map[string]*RevenueBucket)
	weeks := make(map[int]*RevenueBucket)
	var weekOrder []int
	tables := make(map[uint]*TableIncome)
	for _, t := range f.trxs {
		local := t.CreatedAt.In(from.Location())
		key := local.Format(dateFormat)
		b, ok := daily[key]
		if !ok {
			b = &RevenueBucket{Date: key}
			daily[key] = b
		}
		b.add(t)

		if weekly {
			_, week := local.ISOWeek()
			w, ok := weeks[week]
			if !ok {
				w = &RevenueBucket{Week: week}
				weeks[week] = w
				weekOrder = append(weekOrder, week)
			}
			w.add(t)
		}

		if t.TableID != nil {
			ti, ok := tables[*t.TableID]
			if !ok {
				ti = &TableIncome{TableID: *t.TableID}
				tables[*t.TableID] = ti
			}
			ti.TransactionCount++
			ti.TimeRevenue += t.TimeCost
			ti.ProductRevenue += t.ProductCost
			ti.TotalRevenue += t.TotalAmount
		}
	}

	for _, b := range daily {
		report.Daily = append(report.Daily, b.rounded())
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date < report.Daily[j].Date })
	if weekly {
		// transaksi urut waktu, jadi urutan minggu ikut kronologis
		report.Weekly = make([]RevenueBucket, 0, len(weekOrder))
		for _, week := range weekOrder {
			report.Weekly = append(report.Weekly, weeks[week].rounded())
		}
	}
	for _, ti := range tables {
		ti.TimeRevenue = round2(ti.TimeRevenue)
		ti.ProductRevenue = round2(ti.ProductRevenue)
		ti.TotalRevenue = round2(ti.TotalRevenue)
		report.Tables = append(report.Tables, *ti)
	}
	sort.Slice(report.Tables, func(i, j int) bool { return report.Tables[i].TableID < report.Tables[j].TableID })
	return report, nil
}

func (b *RevenueBucket) add(t models.Transaction) {
	b.TransactionCount++
	b.TotalRevenue += t.TotalAmount
	b.TimeRevenue += t.TimeCost
	b.ProductRevenue += t.ProductCost
}

func (b RevenueBucket) rounded() RevenueBucket {
	b.TotalRevenue = round2(b.TotalRevenue)
	b.TimeRevenue = round2(b.TimeRevenue)
	b.ProductRevenue = round2(b.ProductRevenue)
	return b
}

// aggregate loads the transactions and sale ledger rows in [start, end) and folds them.
func (s *ReportService) aggregate(ctx context.Context, start, end time.Time) (*figures, error) {
	db := s.conn(ctx)

	var trxs []models.Transaction
	if err := db.Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at").Find(&trxs).Error; err != nil {
		return nil, err
	}
	var sales []models.InventoryEntry
	if err := db.Where("change_type = ? AND created_at >= ? AND created_at < ?", models.ChangeSale, start, end).
		Order("id").Find(&sales).Error; err != nil {
		return nil, err
	}

	f := &figures{
		trxs:     trxs,
		count:    len(trxs),
		payments: []PaymentTotal{},
		products: []ProductSales{},
	}

	payments := make(map[string]*PaymentTotal)
	for _, t := range trxs {
		f.revenue += t.TotalAmount
		f.timeRevenue += t.TimeCost
		f.productRevenue += t.ProductCost
		p, ok := payments[t.PaymentMethod]
		if !ok {
			p = &PaymentTotal{Method: t.PaymentMethod}
			payments[t.PaymentMethod] = p
		}
		p.Count++
		p.Amount += t.TotalAmount
	}
	for _, p := range payments {
		p.Amount = round2(p.Amount)
		f.payments = append(f.payments, *p)
	}
	sort.Slice(f.payments, func(i, j int) bool { return f.payments[i].Method < f.payments[j].Method })

	products := make(map[uint]*ProductSales)
	soldOn := make(map[uint]map[string]bool)
	for _, e := range sales {
		ps, ok := products[e.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: e.ProductID, Name: e.ProductName, Category: e.Category}
			products[e.ProductID] = ps
			soldOn[e.ProductID] = make(map[string]bool)
		}
		units := -e.ChangeQuantity
		ps.Units += units
		ps.Revenue += float64(units) * e.Price
		ps.Cost += float64(units) * e.Cost
		if units > 0 {
			soldOn[e.ProductID][e.CreatedAt.In(start.Location()).Format(dateFormat)] = true
		}
	}
	for id, ps := range products {
		f.cogs += ps.Cost
		if ps.Units <= 0 {
			continue
		}
		ps.Revenue = round2(ps.Revenue)
		ps.Cost = round2(ps.Cost)
		ps.DaysSold = len(soldOn[id])
		f.products = append(f.products, *ps)
	}
	sort.Slice(f.products, func(i, j int) bool {
		a, b := f.products[i], f.products[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.Name < b.Name
	})

	f.revenue = round2(f.revenue)
	f.timeRevenue = round2(f.timeRevenue)
	f.productRevenue = round2(f.productRevenue)
	f.cogs = round2(f.cogs)
	return f, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
