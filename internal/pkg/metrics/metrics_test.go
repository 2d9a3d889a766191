package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(ledgerDaysUsed.WithLabelValues("VACATION"))
	RecordLedgerUsage("VACATION", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(ledgerDaysUsed.WithLabelValues("VACATION")))

	before = testutil.ToFloat64(attendanceCheckIns.WithLabelValues("LATE"))
	RecordCheckIn("LATE")
	assert.Equal(t, before+1, testutil.ToFloat64(attendanceCheckIns.WithLabelValues("LATE")))

	before = testutil.ToFloat64(outboxPublished.WithLabelValues("leave.decided", "failed"))
	RecordOutboxResult("leave.decided", false)
	assert.Equal(t, before+1, testutil.ToFloat64(outboxPublished.WithLabelValues("leave.decided", "failed")))
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/leave/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler())

	counter := httpRequests.WithLabelValues(http.MethodGet, "/leave/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leave/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hris_ledger_http_requests_total"))
}
