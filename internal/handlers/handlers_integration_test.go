package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"greentrack/internal/emissions"
	"greentrack/internal/handlers"
	"greentrack/internal/middleware"
	"greentrack/internal/models"
	"greentrack/internal/repositories"
	"greentrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp boots the full Fiber app over a named in-memory SQLite database,
// wired exactly like main. Each test uses its own database name so state
// never leaks between tests.
func setupApp(dbName string) (*fiber.App, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Activity{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	table := emissions.DefaultTable()
	calculator := emissions.NewCalculator(table)

	userRepo := repositories.NewGORMUserRepository(db)
	activityRepo := repositories.NewGORMActivityRepository(db)

	authService := services.NewAuthService(userRepo, nil, jwtSecret) // nil for RabbitMQ client
	activityService := services.NewActivityService(activityRepo, calculator, nil)
	leaderboardService := services.NewLeaderboardService(activityRepo, userRepo)

	authHandler := handlers.NewAuthHandler(authService)
	activityHandler := handlers.NewActivityHandler(activityService, leaderboardService, table)

	app := fiber.New()
	api := app.Group("/api")
	protect := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(api, protect)
	activityHandler.RegisterRoutes(api, protect)

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	var decoded map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&decoded)
	assert.NoError(t, err)
	resp.Body.Close()
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	app, err := setupApp("register_login")
	assert.NoError(t, err)

	register(t, app, "alice", "a@x.com", "pw123456")

	// Duplicate username collides; no second account is created.
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "a2@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	// Duplicate email collides too.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2", "email": "a@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login with the registered email.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user, _ := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	// Wrong password: 401, generic message.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	// Unknown email: same status, same message.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	// Missing fields: 400.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeEndpoint(t *testing.T) {
	app, err := setupApp("me_endpoint")
	assert.NoError(t, err)

	token := register(t, app, "profileuser", "profile@x.com", "pw123456")

	resp, body := doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := body["data"].(map[string]interface{})
	assert.Equal(t, "profileuser", data["username"])
	assert.Equal(t, "profile@x.com", data["email"])
	assert.NotEmpty(t, data["id"])
	assert.NotEmpty(t, data["createdAt"])

	// Without a token the gate short-circuits.
	resp, body = doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	// A forged token is rejected the same way.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "not.a.real.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActivityLedgerFlow(t *testing.T) {
	app, err := setupApp("ledger_flow")
	assert.NoError(t, err)

	token := register(t, app, "alice", "a@x.com", "pw123456")

	// Log three activities across two categories, dates out of order.
	resp, body := doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-02", "category": "Transport", "type": "Car (Gasoline)", "value": 100, "unit": "Miles",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created, _ := body["data"].(map[string]interface{})
	assert.InDelta(t, 40.4, created["carbonFootprint"].(float64), 1e-9)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-03", "category": "Food", "type": "Vegan Meal", "value": 2, "unit": "Meals",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-01", "category": "Food", "type": "Standard Meal", "value": 1, "unit": "Meals",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	toDelete, _ := body["data"].(map[string]interface{})
	toDeleteID, _ := toDelete["id"].(string)

	// List: three entries, newest date first.
	resp, body = doJSON(t, app, http.MethodGet, "/api/activities", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])
	data, _ := body["data"].([]interface{})
	assert.Len(t, data, 3)
	types := make([]string, 0, 3)
	for _, item := range data {
		types = append(types, item.(map[string]interface{})["type"].(string))
	}
	assert.Equal(t, []string{"Vegan Meal", "Car (Gasoline)", "Standard Meal"}, types)

	// Rejections: bad category, unknown type, non-positive value. Nothing
	// gets persisted by any of them.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-01", "category": "Shopping", "type": "Vegan Meal", "value": 1, "unit": "Meals",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-01", "category": "Transport", "type": "Hoverboard", "value": 1, "unit": "Miles",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"date": "2026-08-01", "category": "Food", "type": "Vegan Meal", "value": -1, "unit": "Meals",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/activities", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	// Another user cannot delete alice's activity: 404, not 403, and her
	// ledger is untouched.
	bobToken := register(t, app, "bob", "b@x.com", "pw123456")
	resp, body = doJSON(t, app, http.MethodDelete, "/api/activities/"+toDeleteID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Activity not found or unauthorized", body["error"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/activities", token, nil)
	assert.Equal(t, float64(3), body["count"])

	// The owner deletes it; only that record goes away.
	resp, body = doJSON(t, app, http.MethodDelete, "/api/activities/"+toDeleteID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/activities", token, nil)
	assert.Equal(t, float64(2), body["count"])

	// Deleting a nonexistent id is the same 404.
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/activities/"+toDeleteID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLeaderboardEndpoint(t *testing.T) {
	app, err := setupApp("leaderboard")
	assert.NoError(t, err)

	aliceToken := register(t, app, "alice", "a@x.com", "pw123456")
	bobToken := register(t, app, "bob", "b@x.com", "pw123456")

	// alice: 40.4 + 1.0 + 5.18 = 46.58; bob: 3.5
	for _, activity := range []map[string]interface{}{
		{"date": "2026-08-01", "category": "Transport", "type": "Car (Gasoline)", "value": 100, "unit": "Miles"},
		{"date": "2026-08-02", "category": "Food", "type": "Vegan Meal", "value": 2, "unit": "Meals"},
		{"date": "2026-08-03", "category": "Home Energy", "type": "Electricity", "value": 10, "unit": "kWh"},
	} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/activities", aliceToken, activity)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/activities", bobToken, map[string]interface{}{
		"date": "2026-08-01", "category": "Food", "type": "Meat-Heavy Meal", "value": 1, "unit": "Meals",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Public endpoint, no token required. Ascending by total footprint.
	resp, body := doJSON(t, app, http.MethodGet, "/api/activities/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data, _ := body["data"].([]interface{})
	assert.Len(t, data, 2)

	first, _ := data[0].(map[string]interface{})
	second, _ := data[1].(map[string]interface{})
	assert.Equal(t, "bob", first["username"])
	assert.InDelta(t, 3.5, first["totalFootprint"].(float64), 1e-9)
	assert.Equal(t, "alice", second["username"])
	assert.InDelta(t, 46.58, second["totalFootprint"].(float64), 1e-9)

	// limit truncates the board.
	resp, body = doJSON(t, app, http.MethodGet, "/api/activities/leaderboard?limit=1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ = body["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestActivitySummary(t *testing.T) {
	app, err := setupApp("summary")
	assert.NoError(t, err)

	token := register(t, app, "alice", "a@x.com", "pw123456")
	for _, activity := range []map[string]interface{}{
		{"date": "2026-08-01", "category": "Food", "type": "Vegan Meal", "value": 2, "unit": "Meals"},
		{"date": "2026-08-02", "category": "Food", "type": "Standard Meal", "value": 1, "unit": "Meals"},
		{"date": "2026-08-03", "category": "Waste", "type": "Recycling (avoided emissions)", "value": 2, "unit": "Bags"},
	} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/activities", token, activity)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/activities/summary", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := body["data"].(map[string]interface{})
	assert.InDelta(t, 2.5, data["Food"].(float64), 1e-9)
	assert.InDelta(t, -1.0, data["Waste"].(float64), 1e-9)
}

func TestActivityTypesCatalog(t *testing.T) {
	app, err := setupApp("types")
	assert.NoError(t, err)

	// Public endpoint.
	resp, body := doJSON(t, app, http.MethodGet, "/api/activities/types", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := body["data"].([]interface{})
	assert.Len(t, data, 12)

	first, _ := data[0].(map[string]interface{})
	assert.Equal(t, "Food", first["category"])
	assert.NotEmpty(t, first["type"])
	assert.NotEmpty(t, first["unit"])
}

func TestActivitiesRequireAuth(t *testing.T) {
	app, err := setupApp("auth_required")
	assert.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodGet, "/api/activities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/activities", "garbage", map[string]interface{}{
		"date": "2026-08-01", "category": "Food", "type": "Vegan Meal", "value": 1, "unit": "Meals",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/activities/some-id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
