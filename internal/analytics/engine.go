package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/pos-core/internal/domain"
)

// MaxRangeDays bounds explicit range queries
const MaxRangeDays = 3660

var ErrInvalidRange = errors.New("invalid date range")

// Source is the read side of the record store the engine folds over
type Source interface {
	Now() time.Time
	Orders() []domain.Order
	Expenses() []domain.Expense
}

// DailyStat is the rollup of one calendar day
type DailyStat struct {
	Date       string  `json:"date"`
	Label      string  `json:"label"`
	Day        string  `json:"day"`
	Sales      float64 `json:"sales"`
	Profit     float64 `json:"profit"`
	Expenses   float64 `json:"expenses"`
	OrderCount int     `json:"order_count"`
}

// Totals sums a set of days
type Totals struct {
	Sales      float64 `json:"sales"`
	Profit     float64 `json:"profit"`
	Expenses   float64 `json:"expenses"`
	NetProfit  float64 `json:"net_profit"`
	OrderCount int     `json:"order_count"`
}

type bucket struct {
	sales    decimal.Decimal
	profit   decimal.Decimal
	expenses decimal.Decimal
	orders   int
}

func (b *bucket) add(o *bucket) {
	b.sales = b.sales.Add(o.sales)
	b.profit = b.profit.Add(o.profit)
	b.expenses = b.expenses.Add(o.expenses)
	b.orders += o.orders
}

func (b *bucket) totals() Totals {
	return Totals{
		Sales:      b.sales.InexactFloat64(),
		Profit:     b.profit.InexactFloat64(),
		Expenses:   b.expenses.InexactFloat64(),
		NetProfit:  b.profit.Sub(b.expenses).InexactFloat64(),
		OrderCount: b.orders,
	}
}

func newBucket() *bucket {
	return &bucket{sales: decimal.Zero, profit: decimal.Zero, expenses: decimal.Zero}
}

// Engine derives daily statistics from the current orders and expenses.
// Nothing is cached; every call folds the collections again.
type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

func (e *Engine) location() *time.Location {
	return e.src.Now().Location()
}

// Today returns the current day key in the store timezone
func (e *Engine) Today() string {
	return domain.DayKey(e.src.Now())
}

// buckets folds every order and expense into its day
func (e *Engine) buckets() map[string]*bucket {
	loc := e.location()
	days := make(map[string]*bucket)
	get := func(key string) *bucket {
		b, ok := days[key]
		if !ok {
			b = newBucket()
			days[key] = b
		}
		return b
	}

	for _, o := range e.src.Orders() {
		b := get(domain.DayKey(time.UnixMilli(o.Timestamp).In(loc)))
		b.sales = b.sales.Add(decimal.NewFromFloat(o.Amount))
		b.profit = b.profit.Add(o.ProfitDecimal())
		b.orders++
	}
	for _, x := range e.src.Expenses() {
		b := get(x.Date)
		b.expenses = b.expenses.Add(decimal.NewFromFloat(x.Amount))
	}
	return days
}

func stat(key string, day time.Time, b *bucket) DailyStat {
	s := DailyStat{
		Date:  key,
		Label: strconv.Itoa(int(day.Month())) + "-" + strconv.Itoa(day.Day()),
		Day:   day.Weekday().String()[:3],
	}
	if b != nil {
		t := b.totals()
		s.Sales, s.Profit, s.Expenses, s.OrderCount = t.Sales, t.Profit, t.Expenses, t.OrderCount
	}
	return s
}

func (e *Engine) parse(date string) (time.Time, error) {
	return domain.ParseDayIn(date, e.location())
}

// StatsForDay returns the rollup of one day, zero valued when nothing
// happened on it
func (e *Engine) StatsForDay(date string) (DailyStat, error) {
	day, err := e.parse(date)
	if err != nil {
		return DailyStat{}, err
	}
	key := domain.DayKey(day)
	return stat(key, day, e.buckets()[key]), nil
}

// TodayStats is StatsForDay for the current day
func (e *Engine) TodayStats() DailyStat {
	s, _ := e.StatsForDay(e.Today())
	return s
}

// StatsForRange returns one entry per day from start to end inclusive,
// ordered by date
func (e *Engine) StatsForRange(start, end string) ([]DailyStat, error) {
	from, err := e.parse(start)
	if err != nil {
		return nil, err
	}
	to, err := e.parse(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}

	days := e.buckets()
	out := make([]DailyStat, 0, 7)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if len(out) >= MaxRangeDays {
			return nil, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxRangeDays)
		}
		key := domain.DayKey(d)
		out = append(out, stat(key, d, days[key]))
	}
	return out, nil
}

// Recent returns the last n days that have any order or expense, ordered
// by date. With no data at all it returns a single zero entry for today.
// n <= 0 returns every day with data.
func (e *Engine) Recent(n int) []DailyStat {
	days := e.buckets()
	return e.recent(days, activeKeys(days, n))
}

func activeKeys(days map[string]*bucket, n int) []string {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	return keys
}

func (e *Engine) recent(days map[string]*bucket, keys []string) []DailyStat {
	if len(keys) == 0 {
		today := e.src.Now()
		return []DailyStat{stat(domain.DayKey(today), today, nil)}
	}

	loc := e.location()
	out := make([]DailyStat, 0, len(keys))
	for _, k := range keys {
		day, err := domain.ParseDayIn(k, loc)
		if err != nil {
			// expense rows with malformed dates still count, labelled as is
			out = append(out, DailyStat{Date: k, Label: k, Expenses: days[k].expenses.InexactFloat64()})
			continue
		}
		out = append(out, stat(k, day, days[k]))
	}
	return out
}

// Finance is the summary shown on the finance screen
type Finance struct {
	Start string      `json:"start"`
	End   string      `json:"end"`
	Days  []DailyStat `json:"days"`
	Totals
}

// FinanceSummary folds the last n active days. Expenses count every
// expense dated between the first and the last listed day.
func (e *Engine) FinanceSummary(n int) Finance {
	days := e.buckets()
	keys := activeKeys(days, n)
	list := e.recent(days, keys)
	f := Finance{Start: list[0].Date, End: list[len(list)-1].Date, Days: list}

	sum := newBucket()
	for _, k := range keys {
		b := days[k]
		sum.sales = sum.sales.Add(b.sales)
		sum.profit = sum.profit.Add(b.profit)
		sum.orders += b.orders
	}
	for _, x := range e.src.Expenses() {
		if x.Date >= f.Start && x.Date <= f.End {
			sum.expenses = sum.expenses.Add(decimal.NewFromFloat(x.Amount))
		}
	}
	f.Totals = sum.totals()
	return f
}

// Period is the rollup of a month or a year
type Period struct {
	Period string      `json:"period"`
	Start  string      `json:"start"`
	End    string      `json:"end"`
	Days   []DailyStat `json:"days,omitempty"`
	Months []Period    `json:"months,omitempty"`
	Totals
}

func validYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", domain.ErrInvalidDate, year)
	}
	return nil
}

// StatsForMonth sums every day of the month and lists them
func (e *Engine) StatsForMonth(year int, month time.Month) (Period, error) {
	if err := validYear(year); err != nil {
		return Period{}, err
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: month %d", domain.ErrInvalidDate, month)
	}
	p, _ := e.month(e.buckets(), year, month)
	return p, nil
}

func (e *Engine) month(days map[string]*bucket, year int, month time.Month) (Period, *bucket) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, e.location())
	last := first.AddDate(0, 1, -1)

	p := Period{
		Period: first.Format("2006-01"),
		Start:  domain.DayKey(first),
		End:    domain.DayKey(last),
	}
	sum := newBucket()
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := domain.DayKey(d)
		b := days[key]
		if b != nil {
			sum.add(b)
		}
		p.Days = append(p.Days, stat(key, d, b))
	}
	p.Totals = sum.totals()
	return p, sum
}

// StatsForYear sums every day of the year, with one summary per month
func (e *Engine) StatsForYear(year int) (Period, error) {
	if err := validYear(year); err != nil {
		return Period{}, err
	}
	days := e.buckets()

	p := Period{
		Period: fmt.Sprintf("%04d", year),
		Start:  fmt.Sprintf("%04d-01-01", year),
		End:    fmt.Sprintf("%04d-12-31", year),
	}
	sum := newBucket()
	for m := time.January; m <= time.December; m++ {
		month, b := e.month(days, year, m)
		month.Days = nil
		p.Months = append(p.Months, month)
		sum.add(b)
	}
	p.Totals = sum.totals()
	return p, nil
}

// DayDetail is one day's rollup with the records behind it
type DayDetail struct {
	Stat     DailyStat        `json:"stat"`
	Orders   []domain.Order   `json:"orders"`
	Expenses []domain.Expense `json:"expenses"`
}

func (e *Engine) DayDetail(date string) (DayDetail, error) {
	s, err := e.StatsForDay(date)
	if err != nil {
		return DayDetail{}, err
	}

	loc := e.location()
	detail := DayDetail{Stat: s, Orders: []domain.Order{}, Expenses: []domain.Expense{}}
	for _, o := range e.src.Orders() {
		if domain.DayKey(time.UnixMilli(o.Timestamp).In(loc)) == s.Date {
			detail.Orders = append(detail.Orders, o)
		}
	}
	for _, x := range e.src.Expenses() {
		if x.Date == s.Date {
			detail.Expenses = append(detail.Expenses, x)
		}
	}
	return detail, nil
}
