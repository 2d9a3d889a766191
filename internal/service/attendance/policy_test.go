package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(config.AttendanceConfig{
		LateAfter:        "08:15",
		CheckInCooldown:  30 * time.Second,
		CheckOutCooldown: 45 * time.Second,
		MinimumDuration:  2 * time.Minute,
		CooldownScope:    "day",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, p.LateAfterHour)
	assert.Equal(t, 15, p.LateAfterMinute)
	assert.Equal(t, CooldownPerDay, p.CooldownScope)
	assert.Equal(t, 2*time.Minute, p.MinimumDuration)

	_, err = NewPolicy(config.AttendanceConfig{LateAfter: "8am", CooldownScope: "employee"})
	assert.Error(t, err)

	_, err = NewPolicy(config.AttendanceConfig{LateAfter: "09:30", CooldownScope: "company"})
	assert.Error(t, err)
}

func TestPolicy_StatusAt(t *testing.T) {
	p := DefaultPolicy()
	day := func(h, m, s int) time.Time { return time.Date(2024, 1, 2, h, m, s, 0, time.UTC) }

	assert.Equal(t, attendance.StatusPresent, p.StatusAt(day(9, 30, 59)))
	assert.Equal(t, attendance.StatusLate, p.StatusAt(day(9, 31, 0)))
	assert.Equal(t, attendance.StatusLate, p.StatusAt(day(10, 0, 0)))
	assert.Equal(t, attendance.StatusPresent, p.StatusAt(day(0, 0, 0)))
}

func TestWithinCooldown(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	assert.False(t, withinCooldown(nil, now, time.Minute))
	assert.True(t, withinCooldown(at(-10*time.Second), now, time.Minute))
	assert.True(t, withinCooldown(at(-time.Minute), now, time.Minute))
	assert.False(t, withinCooldown(at(-61*time.Second), now, time.Minute))
	assert.False(t, withinCooldown(at(-time.Second), now, 0))
}
