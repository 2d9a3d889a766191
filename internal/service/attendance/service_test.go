package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-ledger/internal/repository/memtest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testEmployeeID = "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b"

type trackerFixture struct {
	store   *memtest.Store
	svc     attendance.AttendanceService
	advance func(d time.Duration)
	loc     *time.Location
}

func newTrackerFixture(t *testing.T, start time.Time, policy Policy) *trackerFixture {
	t.Helper()

	fake := clockwork.NewFakeClockAt(start)
	store := memtest.NewStore()
	store.SetNow(fake.Now)
	clk := clock.New(fake, start.Location())

	return &trackerFixture{
		store:   store,
		svc:     NewAttendanceService(store.Transactor(), store.Attendance(), store.Outbox(), clk, policy, zap.NewNop()),
		advance: fake.Advance,
		loc:     start.Location(),
	}
}

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func TestCheckIn_StatusAroundLateThreshold(t *testing.T) {
	loc := jakarta(t)

	tests := []struct {
		name string
		at   time.Time
		want attendance.Status
	}{
		{"09:29 is present", time.Date(2024, 3, 4, 9, 29, 0, 0, loc), attendance.StatusPresent},
		{"09:30 is present", time.Date(2024, 3, 4, 9, 30, 0, 0, loc), attendance.StatusPresent},
		{"09:30:59 is present", time.Date(2024, 3, 4, 9, 30, 59, 0, loc), attendance.StatusPresent},
		{"09:31 is late", time.Date(2024, 3, 4, 9, 31, 0, 0, loc), attendance.StatusLate},
		{"14:00 is late", time.Date(2024, 3, 4, 14, 0, 0, 0, loc), attendance.StatusLate},
		{"07:00 is present", time.Date(2024, 3, 4, 7, 0, 0, 0, loc), attendance.StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTrackerFixture(t, tt.at, DefaultPolicy())

			record, err := f.svc.CheckIn(context.Background(), testEmployeeID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, record.Status)
			assert.Equal(t, calendar.New(2024, 3, 4), record.Date)
			assert.Equal(t, attendance.StateCheckedIn, record.State())
			require.NotNil(t, record.CheckIn)
			assert.True(t, record.CheckIn.Equal(tt.at))
		})
	}
}

func TestCheckIn_DateFollowsBusinessTimezone(t *testing.T) {
	loc := jakarta(t)
	// 01:00 in Jakarta on the 5th is still the 4th in UTC.
	f := newTrackerFixture(t, time.Date(2024, 3, 5, 1, 0, 0, 0, loc), DefaultPolicy())

	record, err := f.svc.CheckIn(context.Background(), testEmployeeID)

	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", record.Date.String())
	assert.Equal(t, time.UTC, record.Date.Time().Location())
}

func TestCheckIn_SecondAttemptSameDay(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 8, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(5 * time.Minute)
	_, err = f.svc.CheckIn(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	f.advance(8 * time.Hour)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(5 * time.Minute)
	_, err = f.svc.CheckIn(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)

	assert.Equal(t, 1, f.store.AttendanceCount(testEmployeeID))
}

func TestCheckIn_ConcurrentAttemptsCreateOneRecord(t *testing.T) {
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 8, 0, 0, 0, jakarta(t)), DefaultPolicy())

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(context.Background(), testEmployeeID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.store.AttendanceCount(testEmployeeID))
}

func TestCheckIn_CooldownSpansMidnight(t *testing.T) {
	ctx := context.Background()
	loc := jakarta(t)
	start := time.Date(2024, 3, 4, 23, 59, 55, 0, loc)

	t.Run("employee scope refuses", func(t *testing.T) {
		f := newTrackerFixture(t, start, DefaultPolicy())

		_, err := f.svc.CheckIn(ctx, testEmployeeID)
		require.NoError(t, err)

		f.advance(10 * time.Second)
		_, err = f.svc.CheckIn(ctx, testEmployeeID)
		assert.ErrorIs(t, err, attendance.ErrRateLimited)
		assert.Equal(t, 1, f.store.AttendanceCount(testEmployeeID))

		f.advance(time.Minute)
		record, err := f.svc.CheckIn(ctx, testEmployeeID)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", record.Date.String())
	})

	t.Run("day scope allows", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.CooldownScope = CooldownPerDay
		f := newTrackerFixture(t, start, policy)

		_, err := f.svc.CheckIn(ctx, testEmployeeID)
		require.NoError(t, err)

		f.advance(10 * time.Second)
		_, err = f.svc.CheckIn(ctx, testEmployeeID)
		assert.NoError(t, err)
		assert.Equal(t, 2, f.store.AttendanceCount(testEmployeeID))
	})
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 17, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckOut(context.Background(), testEmployeeID)

	assert.ErrorIs(t, err, attendance.ErrNoCheckIn)
}

func TestCheckOut_YesterdaysRecordDoesNotCount(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 22, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(3 * time.Hour)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrNoCheckIn)
}

func TestCheckOut_MinimumDuration(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	checkedIn, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(30 * time.Second)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrMinimumDurationNotMet)

	f.advance(31 * time.Second)
	record, err := f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)
	require.NotNil(t, record.CheckOut)
	assert.Equal(t, checkedIn.ID, record.ID)
	assert.Equal(t, 61*time.Second, record.WorkDuration())
	assert.Equal(t, attendance.StateCheckedOut, record.State())
	assert.False(t, record.CheckOut.Before(*record.CheckIn))
}

func TestCheckOut_Twice(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)
	f.advance(4 * time.Hour)
	first, err := f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	today, err := f.svc.Today(ctx, testEmployeeID)
	require.NoError(t, err)
	require.NotNil(t, today.Attendance)
	assert.True(t, today.Attendance.CheckOut.Equal(*first.CheckOut))
}

func TestCheckOut_CooldownAfterPreviousCheckOut(t *testing.T) {
	ctx := context.Background()
	policy := DefaultPolicy()
	policy.MinimumDuration = 0
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 23, 58, 0, 0, jakarta(t)), policy)

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)
	f.advance(110 * time.Second) // 23:59:50
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(5 * time.Second) // 23:59:55 -> next check-in lands tomorrow after the check-in cooldown
	f.advance(2 * time.Minute)
	_, err = f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	assert.NoError(t, err, "previous check-out is more than a minute old")
}

func TestCheckOut_RateLimitedWithinWindow(t *testing.T) {
	ctx := context.Background()
	policy := DefaultPolicy()
	policy.MinimumDuration = 0
	policy.CheckInCooldown = 0
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 23, 59, 40, 0, jakarta(t)), policy)

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)
	f.advance(10 * time.Second) // 23:59:50
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(15 * time.Second) // 00:00:05 next day
	_, err = f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	f.advance(10 * time.Second)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	assert.ErrorIs(t, err, attendance.ErrRateLimited)
}

func TestCheckIn_RecordsOutboxEvents(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	require.NoError(t, err)

	// Refused operations leave no trace.
	_, err = f.svc.CheckOut(ctx, testEmployeeID)
	require.Error(t, err)

	events := f.store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, attendance.EventCheckedIn, events[0].EventType)
	assert.Equal(t, attendance.EventCheckedOut, events[1].EventType)
	assert.Equal(t, "attendance.events", events[0].Topic)
	assert.Contains(t, string(events[0].Payload), `"employee_id":"`+testEmployeeID+`"`)
}

func TestCheckIn_RequiresEmployee(t *testing.T) {
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	_, err := f.svc.CheckIn(context.Background(), " ")

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 3, 4, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	status, err := f.svc.Today(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNotStarted, status.State())
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)

	_, err = f.svc.CheckIn(ctx, testEmployeeID)
	require.NoError(t, err)

	status, err = f.svc.Today(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCheckedIn, status.State())
	assert.False(t, status.CanCheckIn)
	assert.True(t, status.CanCheckOut)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t, time.Date(2024, 2, 28, 9, 0, 0, 0, jakarta(t)), DefaultPolicy())

	for i := 0; i < 3; i++ { // Feb 28, Feb 29, Mar 1
		_, err := f.svc.CheckIn(ctx, testEmployeeID)
		require.NoError(t, err)
		f.advance(24 * time.Hour)
	}

	all, err := f.svc.History(ctx, testEmployeeID, attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-01", all[0].Date.String())

	month, year := 2, 2024
	feb, err := f.svc.History(ctx, testEmployeeID, attendance.HistoryFilter{Month: &month, Year: &year})
	require.NoError(t, err)
	assert.Len(t, feb, 2)

	bad := 13
	_, err = f.svc.History(ctx, testEmployeeID, attendance.HistoryFilter{Month: &bad, Year: &year})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
