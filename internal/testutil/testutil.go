package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ministry/internal/config"
	"ministry/internal/model"
)

// TestConfig returns a test configuration
func TestConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Server.Environment = "test"
	cfg.Session.Secret = "test-session-secret"
	cfg.Session.TokenTTL = time.Hour
	cfg.Ministry.Timezone = "UTC"
	cfg.Ministry.CurrencySymbol = "₱"
	cfg.Ministry.MemberEmailDomain = "ministry.local"
	cfg.Redis.Addr = ""
	cfg.OpenFGA.Enabled = false
	cfg.Stripe.SecretKey = ""
	cfg.Storage.Type = "local"
	cfg.Telemetry.Enabled = false
	return cfg
}

// NewTestDB opens a private in-memory SQLite database with every table migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...), "Failed to migrate test database")
	return db
}

// SetupTestApp creates a test Fiber app with the error handler used in production.
func SetupTestApp(errorHandler fiber.ErrorHandler) *fiber.App {
	cfg := fiber.Config{DisableStartupMessage: true}
	if errorHandler != nil {
		cfg.ErrorHandler = errorHandler
	}
	return fiber.New(cfg)
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// NewMember builds an active member with unique contact details.
func NewMember(surname, givenName string) model.Member {
	id := uuid.New()
	username := strings.ToLower(fmt.Sprintf("%s.%s.%s", givenName, surname, id.String()[:6]))
	joined := model.NewDate(2020, time.June, 1)
	birthday := model.NewDate(2008, time.March, 14)
	return model.Member{
		ID:                id,
		Surname:           surname,
		GivenName:         givenName,
		Birthday:          &birthday,
		Address:           "Poblacion",
		ParentContact:     "09170000000",
		Email:             username + "@ministry.local",
		Username:          username,
		DateOfInvestiture: &joined,
		Status:            model.MemberStatusActive,
	}
}

// CreateMember stores a member built by NewMember.
func CreateMember(t *testing.T, db *gorm.DB, surname, givenName string) model.Member {
	t.Helper()
	member := NewMember(surname, givenName)
	require.NoError(t, db.Create(&member).Error, "Failed to create test member")
	return member
}

// CreateAdmin stores an active admin whose password is ValidPassword.
func CreateAdmin(t *testing.T, db *gorm.DB, name, email string) model.AdminUser {
	t.Helper()
	admin := model.AdminUser{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: HashPassword(t, ValidPassword()),
		Role:         model.RoleAdmin,
		Permissions:  model.StringList{"members", "dues", "events"},
		IsActive:     true,
	}
	require.NoError(t, db.Create(&admin).Error, "Failed to create test admin")
	return admin
}

// PostJSON sends a POST request with JSON body
func PostJSON(t *testing.T, app *fiber.App, url string, body any, headers ...string) *http.Response {
	return sendJSON(t, app, http.MethodPost, url, body, headers...)
}

// PatchJSON sends a PATCH request with JSON body
func PatchJSON(t *testing.T, app *fiber.App, url string, body any, headers ...string) *http.Response {
	return sendJSON(t, app, http.MethodPatch, url, body, headers...)
}

// GetJSON sends a GET request and expects JSON response
func GetJSON(t *testing.T, app *fiber.App, url string, headers ...string) *http.Response {
	return sendJSON(t, app, http.MethodGet, url, nil, headers...)
}

// Delete sends a DELETE request without a body.
func Delete(t *testing.T, app *fiber.App, url string, headers ...string) *http.Response {
	return sendJSON(t, app, http.MethodDelete, url, nil, headers...)
}

// Bearer returns header pairs carrying the token for the JSON helpers.
func Bearer(token string) []string {
	return []string{fiber.HeaderAuthorization, "Bearer " + token}
}

func sendJSON(t *testing.T, app *fiber.App, method, url string, body any, headers ...string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// ParseJSONResponse parses JSON response into the given struct
func ParseJSONResponse(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	err = json.Unmarshal(body, dest)
	require.NoError(t, err, "body: %s", string(body))
}

// AssertJSONResponse checks the status code and decodes the body into dest when given.
func AssertJSONResponse(t *testing.T, resp *http.Response, expectedStatus int, dest any) {
	t.Helper()
	if resp.StatusCode != expectedStatus {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.Equal(t, expectedStatus, resp.StatusCode, "body: %s", string(body))
		return
	}
	if dest != nil {
		ParseJSONResponse(t, resp, dest)
	}
}

// ValidPassword returns a password that satisfies the strength rule.
func ValidPassword() string {
	return "ValidPass123!"
}
