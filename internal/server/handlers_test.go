package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/health"
	"github.com/weks-labs/rewards-bot/internal/ledger"
	"github.com/weks-labs/rewards-bot/internal/ratelimit"
	"github.com/weks-labs/rewards-bot/internal/reward"
	"github.com/weks-labs/rewards-bot/pkg/config"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

const testBotToken = "12345:TEST-TOKEN"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signInitData(t *testing.T, fields map[string]string, botToken string) string {
	t.Helper()

	entries := make([]string, 0, len(fields))
	for key, value := range fields {
		entries = append(entries, key+"="+value)
	}
	sort.Strings(entries)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	sig := hmac.New(sha256.New, secret.Sum(nil))
	sig.Write([]byte(strings.Join(entries, "\n")))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hex.EncodeToString(sig.Sum(nil)))

	return values.Encode()
}

func initDataFor(t *testing.T, id, name string) string {
	t.Helper()

	user, err := json.Marshal(map[string]any{"id": mustInt(t, id), "first_name": name})
	require.NoError(t, err)

	return signInitData(t, map[string]string{
		"user":      string(user),
		"auth_date": "1714000000",
	}, testBotToken)
}

func mustInt(t *testing.T, s string) int64 {
	t.Helper()

	n, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return n
}

type serverFixture struct {
	server *Server
	store  *ledger.RedisStore
	mr     *miniredis.Miniredis
}

func setupServer(t *testing.T, rl config.RateLimitConfig) *serverFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := appredis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	log := testLogger()
	store := ledger.NewRedisStore(client, log)
	processor := reward.NewProcessor(store, reward.Config{
		DailyCap:      100,
		CoinsPerUnit:  10,
		ReferralBonus: 2000,
	}, nil, log)

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(client.Client))

	srv := New(Options{
		Processor:  processor,
		BotToken:   testBotToken,
		Health:     checker,
		Limiter:    ratelimit.NewMemoryLimiter(),
		RateLimit:  rl,
		ErrHandler: apperrors.NewHandler(log, false),
		Log:        log,
	})

	return &serverFixture{server: srv, store: store, mr: mr}
}

func (f *serverFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestClaim_CreditsWithinCap(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	rec := f.post(t, "/api/claim", map[string]any{
		"initData": initDataFor(t, "7", "Alice"),
		"correct":  5,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 5, body["creditedQ"])
	assert.EqualValues(t, 50, body["coins"])
	assert.EqualValues(t, 5, body["today"])
	assert.EqualValues(t, 100, body["dailyCap"])
	assert.EqualValues(t, 50, body["balance"])
}

func TestClaim_CapReachedMessage(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})
	initData := initDataFor(t, "7", "Alice")

	rec := f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 100, body["creditedQ"])

	rec = f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.EqualValues(t, 0, body["creditedQ"])
	assert.Equal(t, "DAILY_CAP_REACHED", body["message"])
	assert.EqualValues(t, 1000, body["balance"])
}

func TestClaim_InvalidSignature(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	initData := initDataFor(t, "7", "Alice") + "x"
	rec := f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 5})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_INITDATA", decodeBody(t, rec)["error"])
}

func TestClaim_NothingToClaim(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	rec := f.post(t, "/api/claim", map[string]any{
		"initData": initDataFor(t, "7", "Alice"),
		"correct":  0,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NOTHING_TO_CLAIM", decodeBody(t, rec)["error"])
}

func TestClaim_RateLimited(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{
		Enabled: true,
		Backend: "memory",
		Limit:   1,
		Window:  time.Minute,
	})
	initData := initDataFor(t, "7", "Alice")

	rec := f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 1})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody(t, rec)["error"])
}

func TestClaim_StoreUnavailable(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})
	f.mr.Close()

	rec := f.post(t, "/api/claim", map[string]any{
		"initData": initDataFor(t, "7", "Alice"),
		"correct":  5,
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "SERVER_ERROR", decodeBody(t, rec)["error"])
}

func TestBalance_ReturnsProfile(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})
	initData := initDataFor(t, "7", "Alice")

	rec := f.post(t, "/api/claim", map[string]any{"initData": initData, "correct": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/balance", map[string]any{"initData": initData})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Alice", body["name"])
	assert.EqualValues(t, 30, body["balance"])
	assert.EqualValues(t, 3, body["today"])
	assert.EqualValues(t, 100, body["dailyCap"])
}

func TestHealthz(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decodeBody(t, rec)["redis"])
}

func TestHealthz_Degraded(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})
	f.mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/claim", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationID_Propagated(t *testing.T) {
	f := setupServer(t, config.RateLimitConfig{})

	rec := f.post(t, "/api/balance", map[string]any{"initData": initDataFor(t, "7", "Alice")})
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
