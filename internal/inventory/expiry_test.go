package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
)

func TestExpiryStatusBands(t *testing.T) {
	tests := []struct {
		name      string
		produced  string
		shelfLife int
		wantDays  int
		want      ExpiryStatus
	}{
		{name: "expired", produced: "2024-10-10", shelfLife: 3, wantDays: -3, want: StatusExpired},
		{name: "expires tomorrow", produced: "2024-10-15", shelfLife: 1, wantDays: 0, want: StatusExpiringSoon},
		{name: "thirty days", produced: "2024-10-15", shelfLife: 31, wantDays: 30, want: StatusExpiringSoon},
		{name: "near expiry", produced: "2024-10-15", shelfLife: 45, wantDays: 44, want: StatusNearExpiry},
		{name: "fresh", produced: "2024-10-15", shelfLife: 365, wantDays: 364, want: StatusFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Expiry(domain.Product{ID: 1, Name: "Milk", ProductionDate: tt.produced, ShelfLifeDays: tt.shelfLife}, now)
			require.True(t, ok)
			assert.Equal(t, tt.wantDays, info.DaysRemaining)
			assert.Equal(t, tt.want, info.Status)
		})
	}
}

func TestExpiryRequiresDateAndShelfLife(t *testing.T) {
	_, ok := Expiry(domain.Product{ShelfLifeDays: 10}, now)
	assert.False(t, ok)
	_, ok = Expiry(domain.Product{ProductionDate: "2024-10-01"}, now)
	assert.False(t, ok)
	_, ok = Expiry(domain.Product{ProductionDate: "yesterday", ShelfLifeDays: 3}, now)
	assert.False(t, ok)
}

func TestExpiryDate(t *testing.T) {
	info, ok := Expiry(domain.Product{ProductionDate: "2024-10-01", ShelfLifeDays: 21}, now)
	require.True(t, ok)
	assert.Equal(t, "2024-10-22", info.ExpiryDate)
	assert.Equal(t, 6, info.DaysRemaining)
}

func TestExpiringSortsSoonestFirst(t *testing.T) {
	r, _ := newTestReconciler(t, nil)

	list := r.Expiring(30)
	require.Len(t, list, 2)
	assert.Equal(t, int64(104), list[0].ProductID)
	assert.Equal(t, StatusExpired, list[0].Status)
	assert.Equal(t, int64(103), list[1].ProductID)

	assert.Len(t, r.Expiring(-100), 0)

	info, dated, err := r.ExpiryFor(102)
	require.NoError(t, err)
	assert.False(t, dated)
	assert.Equal(t, ExpiryInfo{}, info)

	_, _, err = r.ExpiryFor(999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestShelfLifeAcrossMonthBoundary(t *testing.T) {
	at := time.Date(2024, 1, 30, 9, 0, 0, 0, time.UTC)
	info, ok := Expiry(domain.Product{ProductionDate: "2024-01-30", ShelfLifeDays: 30}, at)
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", info.ExpiryDate)
	assert.Equal(t, 29, info.DaysRemaining)
}
