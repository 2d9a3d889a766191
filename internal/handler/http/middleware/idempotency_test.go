package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	checkInPath     = "/api/v1/attendance/check-in"
	testCacheKey    = "idemp:" + checkInPath + ":user-1:key-123"
	testLockKey     = testCacheKey + ":lock"
	checkInResponse = `{"success":true}`
)

func idempotentRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, checkInPath, nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req.WithContext(WithPrincipal(req.Context(), auth.Principal{UserID: "user-1"}))
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(checkInResponse))
	})
}

func storedResponse(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(cachedResponse{
		Status:      http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(checkInResponse),
	})
	require.NoError(t, err)
	return string(data)
}

func TestIdempotency_StoresFirstResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "locked", idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(testCacheKey, storedResponse(t), idempotencyCacheTTL).SetVal("OK")
	mock.ExpectDel(testLockKey).SetVal(1)

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(rdb)(countingHandler(&calls)).ServeHTTP(rec, idempotentRequest("key-123"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).SetVal(storedResponse(t))

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(rdb)(countingHandler(&calls)).ServeHTTP(rec, idempotentRequest("key-123"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, checkInResponse, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get(idempotencyReplayed))
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "locked", idempotencyLockTTL).SetVal(false)

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(rdb)(countingHandler(&calls)).ServeHTTP(rec, idempotentRequest("key-123"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).SetErr(errors.New("connection refused"))

	calls := 0
	rec := httptest.NewRecorder()
	Idempotency(rdb)(countingHandler(&calls)).ServeHTTP(rec, idempotentRequest("key-123"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_WithoutKeyIsPassThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	calls := 0
	handler := Idempotency(rdb)(countingHandler(&calls))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, idempotentRequest(""))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testCacheKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "locked", idempotencyLockTTL).SetVal(true)
	mock.ExpectDel(testLockKey).SetVal(1)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	rec := httptest.NewRecorder()
	Idempotency(rdb)(failing).ServeHTTP(rec, idempotentRequest("key-123"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
