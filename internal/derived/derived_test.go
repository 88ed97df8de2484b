package derived

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bonosportal/pkg/models"
)

func bond(id int64, issue time.Time, years int) models.Bond {
	return models.Bond{ID: id, FechaEmision: models.NewFlexDate(issue), PlazoAnios: years}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute(t *testing.T) {
	b := bond(1, date(2020, 1, 1), 10)

	m, err := Compute(b, date(2025, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1826, m.DaysToMaturity)
	assert.InDelta(t, 50.0, m.ProgressPercentage, 0.1)

	m, err = Compute(b, date(2030, 1, 1).Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, m.DaysToMaturity, "partial days round up")

	m, err = Compute(b, date(2031, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, m.DaysToMaturity, "floored at zero")
	assert.Equal(t, 100.0, m.ProgressPercentage)

	m, err = Compute(b, date(2019, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.ProgressPercentage, "not issued yet")
}

func TestComputeZeroTerm(t *testing.T) {
	b := bond(1, date(2024, 1, 1), 0)
	m, err := Compute(b, date(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 100.0, m.ProgressPercentage)

	m, err = Compute(b, date(2023, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.ProgressPercentage)
}

func TestComputeRawDate(t *testing.T) {
	b := models.Bond{ID: 2, FechaEmision: models.FlexDate{Raw: "2020-01-01"}, PlazoAnios: 1}
	m, err := Compute(b, date(2020, 7, 2))
	require.NoError(t, err)
	assert.Equal(t, 183, m.DaysToMaturity)

	_, err = Compute(models.Bond{ID: 3, FechaEmision: models.FlexDate{Raw: "yesterday"}}, date(2020, 1, 1))
	assert.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	b := bond(1, date(2020, 1, 1), 5) // matures 2025-01-01
	tests := []struct {
		now  time.Time
		want Status
	}{
		{date(2024, 6, 1), Active},
		{date(2024, 12, 2), Pending},
		{date(2024, 12, 31), Pending},
		{date(2025, 1, 3), Matured},
	}
	for _, tt := range tests {
		got, err := StatusOf(b, tt.now)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.now.String())
	}
	assert.Equal(t, "Vencido", Matured.Label())
	assert.Equal(t, "Activo", Active.Label())
}

func TestRefreshIdempotent(t *testing.T) {
	bonds := []models.Bond{
		bond(1, date(2020, 1, 1), 10),
		bond(2, date(2023, 5, 20), 3),
		bond(3, date(2019, 3, 15), 2),
	}
	now := date(2024, 3, 15).Add(7 * time.Hour)
	c := New(time.Minute)

	require.NoError(t, c.Refresh(bonds, now))
	first := c.Snapshot()
	require.NoError(t, c.Refresh(bonds, now))
	second := c.Snapshot()

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
}

func TestRefreshReplacesSet(t *testing.T) {
	c := New(time.Minute)
	now := date(2024, 1, 1)
	require.NoError(t, c.Refresh([]models.Bond{bond(1, date(2020, 1, 1), 5), bond(2, date(2020, 1, 1), 5)}, now))
	require.NoError(t, c.Refresh([]models.Bond{bond(3, date(2020, 1, 1), 5)}, now))

	snap := c.Snapshot()
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, int64(3))
}

func TestRefreshReportsBadDates(t *testing.T) {
	c := New(time.Minute)
	bad := models.Bond{ID: 9, FechaEmision: models.FlexDate{Raw: "??"}}
	err := c.Refresh([]models.Bond{bond(1, date(2020, 1, 1), 5), bad}, date(2024, 1, 1))
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestGetUsesWindow(t *testing.T) {
	c := New(time.Minute)
	b := bond(1, date(2020, 1, 1), 10)
	t0 := date(2024, 1, 1)

	assert.False(t, c.Fresh(t0))
	require.NoError(t, c.Refresh([]models.Bond{b}, t0))
	assert.True(t, c.Fresh(t0.Add(59*time.Second)))

	// Inside the window the stored value is returned unchanged.
	m, err := c.Get(b, t0.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, t0, m.ComputedAt)

	// Outside the window the value is recomputed.
	later := t0.Add(2 * time.Minute)
	assert.False(t, c.Fresh(later))
	m, err = c.Get(b, later)
	require.NoError(t, err)
	assert.Equal(t, later, m.ComputedAt)
	assert.Equal(t, 1, c.Len())
}

func TestGetMissInsideWindowStores(t *testing.T) {
	c := New(time.Minute)
	t0 := date(2024, 1, 1)
	require.NoError(t, c.Refresh(nil, t0))

	b := bond(7, date(2022, 1, 1), 4)
	m1, err := c.Get(b, t0.Add(10*time.Second))
	require.NoError(t, err)
	m2, err := c.Get(b, t0.Add(20*time.Second))
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, c.Len())
}
