package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	catalogapp "github.com/tileshop/backend/internal/application/catalog"
	invoicingapp "github.com/tileshop/backend/internal/application/invoicing"
	partnerapp "github.com/tileshop/backend/internal/application/partner"
	"github.com/tileshop/backend/internal/infrastructure/auth"
	"github.com/tileshop/backend/internal/infrastructure/cache"
	"github.com/tileshop/backend/internal/infrastructure/config"
	"github.com/tileshop/backend/internal/infrastructure/event"
	"github.com/tileshop/backend/internal/infrastructure/persistence"
	"github.com/tileshop/backend/internal/infrastructure/printing"
	"github.com/tileshop/backend/internal/interfaces/http/handler"
	"github.com/tileshop/backend/internal/interfaces/http/middleware"
	"github.com/tileshop/backend/tests/testutil"
)

type pdfStub struct{}

func (pdfStub) Render(_ context.Context, doc *printing.InvoiceDocument) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: []byte("%PDF " + doc.Number), PageCount: 1, Strategy: printing.StrategyOverlay}, nil
}

func (pdfStub) Close() error { return nil }

type testServer struct {
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T, loginLimit int) *testServer {
	t.Helper()
	middleware.SetupValidator()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	tileRepo := persistence.NewGormTileRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, bus)
	bus.Subscribe(partnerapp.NewPendingBalanceHandler(customerService, zap.NewNop()))
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, tileRepo,
		cache.NewInMemorySequenceLocker(), bus)
	documentService := invoicingapp.NewDocumentService(invoicingapp.DocumentServiceConfig{
		Finder:      invoiceService,
		InvoiceRepo: invoiceRepo,
		Renderer:    pdfStub{},
		Strategy:    printing.StrategyOverlay,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authCfg := config.AuthConfig{
		Enabled:           true,
		JWTSecret:         "router-test-secret-long-enough-for-hs256",
		Issuer:            "tile-shop",
		TokenExpiration:   time.Hour,
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	}
	authenticator, err := auth.NewAdminAuthenticator(authCfg, auth.NewJWTService(authCfg), nil)
	require.NoError(t, err)
	token, err := authenticator.Login("admin", "s3cret")
	require.NoError(t, err)

	limiter := middleware.NewRateLimiter(loginLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	engine := NewEngine(EngineConfig{
		HTTP:          config.HTTPConfig{MaxBodySize: 1 << 20},
		Swagger:       config.SwaggerConfig{Enabled: false},
		Authenticator: authenticator,
		LoginLimiter:  limiter,
	}, Handlers{
		System:   handler.NewSystemHandler(sqlDB, ""),
		Auth:     handler.NewAuthHandler(authenticator),
		Tile:     handler.NewTileHandler(catalogapp.NewTileService(tileRepo)),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, documentService),
	})

	return &testServer{engine: engine, token: token.AccessToken}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_PublicEndpoints(t *testing.T) {
	s := newTestServer(t, 10)

	t.Run("root banner", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Tile Shop Invoicing API","version":"1.0"}`, w.Body.String())
	})

	t.Run("health pings the database", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/health", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","service":"tile-shop-api","database":"ok"}`, w.Body.String())
	})

	t.Run("request id and security headers", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/health", nil, false)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("disabled swagger answers 404", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/swagger/index.html", nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewEngine_AdminAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, 10)

	w := s.do(t, http.MethodGet, "/api/v1/tiles", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tiles", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_InvoiceRoutes(t *testing.T) {
	s := newTestServer(t, 10)

	fx := testutil.NewFixtures(11)
	w := s.do(t, http.MethodPost, "/api/v1/customers", fx.Customer(), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var customer struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))

	w = s.do(t, http.MethodPost, "/api/v1/invoices", map[string]any{
		"customer_id": customer.Data.ID,
		"line_items":  []map[string]any{fx.LineItem(fx.TileSize())},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			InvoiceNumber string `json:"invoice_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	ref := url.PathEscape(created.Data.InvoiceNumber)

	t.Run("encoded invoice number routes to :ref", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/invoices/"+ref, nil, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), created.Data.InvoiceNumber)
	})

	t.Run("export is not captured by :ref", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/invoices/export.xlsx", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	})

	t.Run("admin pdf needs a token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/invoices/"+ref+"/pdf", nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("public pdf skips auth", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/public/invoices/"+ref+"/pdf", nil, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
	})
}

func TestNewEngine_LoginIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	creds := map[string]string{"username": "admin", "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/auth/login", creds, false).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/auth/login", creds, false).Code)
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", creds, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestNewEngine_LoginThenLogout(t *testing.T) {
	s := newTestServer(t, 10)

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "s3cret"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/customers", nil, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewEngine_TileImport(t *testing.T) {
	s := newTestServer(t, 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("conflict_mode", "skip"))
	part, err := mw.CreateFormFile("file", "tiles.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Size,Coverage,Box Packing\n2x2,16,4\n1x1,bad,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tiles/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Data struct {
			Created   int `json:"created"`
			ErrorRows int `json:"error_rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Data.Created)
	assert.Equal(t, 1, result.Data.ErrorRows)

	w = s.do(t, http.MethodGet, "/api/v1/tiles/by-size/2x2", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}
