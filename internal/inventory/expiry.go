package inventory

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// ExpiryStatus buckets days remaining until expiry
type ExpiryStatus string

const (
	StatusExpired      ExpiryStatus = "expired"
	StatusExpiringSoon ExpiryStatus = "expiring_soon"
	StatusNearExpiry   ExpiryStatus = "near_expiry"
	StatusFresh        ExpiryStatus = "fresh"
)

// ExpiryInfo describes when a dated product expires
type ExpiryInfo struct {
	ProductID      int64        `json:"product_id"`
	Name           string       `json:"name"`
	ProductionDate string       `json:"production_date"`
	ShelfLifeDays  int          `json:"shelf_life_days"`
	ExpiryDate     string       `json:"expiry_date"`
	DaysRemaining  int          `json:"days_remaining"`
	Status         ExpiryStatus `json:"status"`
}

func statusFor(days int) ExpiryStatus {
	switch {
	case days < 0:
		return StatusExpired
	case days <= 30:
		return StatusExpiringSoon
	case days <= 60:
		return StatusNearExpiry
	}
	return StatusFresh
}

// Expiry computes expiry information. ok is false for products without a
// production date or shelf life.
func Expiry(p domain.Product, now time.Time) (ExpiryInfo, bool) {
	if p.ProductionDate == "" || p.ShelfLifeDays <= 0 {
		return ExpiryInfo{}, false
	}
	produced, err := domain.ParseDayIn(p.ProductionDate, now.Location())
	if err != nil {
		return ExpiryInfo{}, false
	}

	expires := produced.AddDate(0, 0, p.ShelfLifeDays)
	days := int(math.Floor(expires.Sub(now).Hours() / 24))
	return ExpiryInfo{
		ProductID:      p.ID,
		Name:           p.Name,
		ProductionDate: p.ProductionDate,
		ShelfLifeDays:  p.ShelfLifeDays,
		ExpiryDate:     domain.DayKey(expires),
		DaysRemaining:  days,
		Status:         statusFor(days),
	}, true
}

// ExpiryFor computes expiry information for one catalog product
func (r *Reconciler) ExpiryFor(productID int64) (ExpiryInfo, bool, error) {
	p, ok := r.store.Product(productID)
	if !ok {
		return ExpiryInfo{}, false, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
	}
	info, dated := Expiry(p, r.store.Now())
	return info, dated, nil
}

// Expiring lists dated products with at most within days remaining,
// expired ones included, soonest first
func (r *Reconciler) Expiring(within int) []ExpiryInfo {
	now := r.store.Now()
	out := []ExpiryInfo{}
	for _, p := range r.store.Products() {
		info, ok := Expiry(p, now)
		if ok && info.DaysRemaining <= within {
			out = append(out, info)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysRemaining < out[j].DaysRemaining })
	return out
}
