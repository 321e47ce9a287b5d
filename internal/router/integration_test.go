//go:build integration

package router_test

// integration_test.go
// Exercises the HTTP stack and the repositories against real Postgres and
// Redis containers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/config"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/repository"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/router"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Environment ──────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	app    *router.App
	db     *gorm.DB
	rdb    *redis.Client
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	gin.SetMode(gin.TestMode)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("garage_test"),
		tcPostgres.WithUsername("garage"),
		tcPostgres.WithPassword("garage"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "integration-secret-key-32-chars!",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		Timezone:           "America/Argentina/Buenos_Aires",
		DayStartHour:       6,
		NightStartHour:     22,
		CORSOrigins:        "*",
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := service.HashPassword("admin1234")
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username: "admin", Name: "Admin", PasswordHash: hash,
		Role: model.RoleAdmin, Active: true,
	}).Error)

	app, err := router.NewApp(cfg, db, rdb)
	require.NoError(t, err)
	srv := httptest.NewServer(router.New(app))
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, app: app, db: db, rdb: rdb}
	resp := do(t, srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "admin", Password: "admin1234"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	env.token = login.AccessToken
	return env
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("containers")
	}
	env := setupTestEnv(t)

	t.Run("scan cycle books into today's box list", func(t *testing.T) {
		resp := do(t, env.server, http.MethodPost, "/v1/tickets", jsonBody(t, dto.CreateTicketRequest{
			Barcode: "TCK-0001", VehicleType: "AUTO",
			DayPrice: decimal.NewFromInt(1000), NightPrice: decimal.NewFromInt(1500),
		}), env.token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		scan := func() dto.ScanResponse {
			resp := do(t, env.server, http.MethodPost, "/v1/scanner/scan", jsonBody(t, dto.ScanRequest{Barcode: "TCK-0001"}), env.token)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var out dto.ScanResponse
			decodeJSON(t, resp, &out)
			return out
		}
		assert.Equal(t, "ENTRY", scan().Action)
		exit := scan()
		assert.Equal(t, "EXIT", exit.Action)
		assert.True(t, exit.Registration.Price.IsZero(), "inside the grace period")

		resp = do(t, env.server, http.MethodPost, "/v1/box-lists/other-payments", jsonBody(t, dto.CreateOtherPaymentRequest{
			Description: "Lavado", Price: decimal.NewFromInt(500), Type: model.PaymentIngresos,
		}), env.token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = do(t, env.server, http.MethodGet, "/v1/box-lists/date/today", nil, env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var bl dto.BoxListDetailResponse
		decodeJSON(t, resp, &bl)
		assert.Equal(t, "500", bl.TotalPrice.String())
	})

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		resp := do(t, env.server, http.MethodGet, "/v1/tickets", nil, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		ctx := context.Background()
		repo := repository.NewBoxListRepository(env.db)
		day := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)

		ids := make(chan string, 10)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bl, err := repo.FindOrCreate(ctx, nil, day)
				if assert.NoError(t, err) {
					ids <- bl.ID.String()
				}
			}()
		}
		wg.Wait()
		close(ids)
		first := ""
		for id := range ids {
			if first == "" {
				first = id
			}
			assert.Equal(t, first, id, "one box list per day")
		}

		bl, err := repo.FindByDate(ctx, day)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.Increment(ctx, nil, bl.ID, decimal.NewFromInt(10)))
			}()
		}
		wg.Wait()

		bl, err = repo.FindByID(ctx, bl.ID)
		require.NoError(t, err)
		assert.Equal(t, "200", bl.TotalPrice.String())
	})

	t.Run("reconcile does not lose concurrent payments", func(t *testing.T) {
		ctx := context.Background()
		svc := service.NewBoxListService(repository.NewBoxListRepository(env.db), service.NewClock(time.UTC))
		first, err := svc.AddOtherPayment(ctx, dto.CreateOtherPaymentRequest{
			Description: "apertura", Price: decimal.NewFromInt(10), Type: model.PaymentIngresos,
		})
		require.NoError(t, err)
		id, err := uuid.Parse(first.BoxListID)
		require.NoError(t, err)
		// Knock the stored total off so every fix-mode call has work to do.
		require.NoError(t, env.db.Exec("UPDATE box_lists SET total_price = total_price + 1000 WHERE id = ?", id).Error)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := svc.AddOtherPayment(ctx, dto.CreateOtherPaymentRequest{
					Description: "lavado", Price: decimal.NewFromInt(10), Type: model.PaymentIngresos,
				})
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := svc.Reconcile(ctx, id, true)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		report, err := svc.Reconcile(ctx, id, false)
		require.NoError(t, err)
		assert.True(t, report.Balanced, "stored %s computed %s", report.Stored, report.Computed)
	})

	t.Run("one open registration per ticket", func(t *testing.T) {
		ctx := context.Background()
		repo := repository.NewTicketRepository(env.db)
		ticket := &model.Ticket{Barcode: "TCK-IDX", VehicleType: "AUTO", DayPrice: decimal.NewFromInt(1), NightPrice: decimal.NewFromInt(1), Active: true}
		require.NoError(t, repo.Create(ctx, ticket))

		day := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)
		open := func() error {
			return repo.CreateRegistration(ctx, nil, &model.TicketRegistration{
				TicketID: &ticket.ID, EntryDay: day, EntryTime: "10:00:00", VehicleType: "AUTO",
			})
		}
		require.NoError(t, open())
		assert.ErrorIs(t, open(), gorm.ErrDuplicatedKey)
	})

	t.Run("dead letters can be requeued", func(t *testing.T) {
		ctx := context.Background()
		worker.SendToDLQ(ctx, env.rdb, worker.QueueEmail, "receipt_email", json.RawMessage(`{"receipt_id":"x"}`), "smtp down", 3)

		n, err := worker.DLQLength(ctx, env.rdb, worker.QueueEmail)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		resp := do(t, env.server, http.MethodPost, "/v1/jobs/dlq/requeue", nil, env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		queued, err := env.rdb.LLen(ctx, worker.QueueEmail).Result()
		require.NoError(t, err)
		assert.EqualValues(t, 1, queued)
	})
}
