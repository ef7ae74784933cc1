package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"recipebox/internal/app"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupApp builds the full application on a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app, _ := setupAppWithDB(t)
	return app
}

func setupAppWithDB(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{OwnerCacheSize: 16},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
		},
		Auth:    config.AuthConfig{SecretKey: "test_secret", TokenTTL: time.Hour, BcryptCost: 4},
		Session: config.SessionConfig{Store: "memory", Expiration: time.Hour},
		Log:     config.LogConfig{Level: "info", Development: true},
	}

	db, err := database.Open(cfg.Database, zap.NewNop())
	require.NoError(t, err)
	application, err := app.NewWithDB(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })
	return application.Fiber, db
}

// browser replays the cookies the app sets, like a user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

type page struct {
	status   int
	location string
	body     string
}

func (b *browser) do(method, path string, form url.Values) page {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(raw)}
}

func (b *browser) get(path string) page { return b.do(http.MethodGet, path, nil) }

func (b *browser) post(path string, form url.Values) page {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) register(name, email, password string) page {
	return b.post("/register", url.Values{
		"name":      {name},
		"email":     {email},
		"password1": {password},
		"password2": {password},
	})
}

func TestHomeShowsAuthenticationStatus(t *testing.T) {
	app := setupApp(t)
	b := newBrowser(t, app)

	home := b.get("/")
	assert.Equal(t, http.StatusOK, home.status)
	assert.Contains(t, home.body, "Log in or register")

	resp := b.register("Alice", "alice@example.com", "password123")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/", resp.location)

	home = b.get("/")
	assert.Contains(t, home.body, "Welcome back, Alice.")

	resp = b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	home = b.get("/")
	assert.Contains(t, home.body, "Log in or register")

	// Logging out twice is harmless.
	resp = b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, resp.status)
}

func TestRegisterDuplicateEmailRedirectsToLogin(t *testing.T) {
	app := setupApp(t)
	newBrowser(t, app).register("Alice", "alice@example.com", "password123")

	b := newBrowser(t, app)
	resp := b.register("Impostor", "alice@example.com", "password456")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/login", resp.location)

	login := b.get("/login")
	assert.Contains(t, login.body, "Email already exists. Login instead.")

	// The first account keeps its password.
	resp = b.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"password456"}})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	resp = b.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"password123"}})
	assert.Equal(t, http.StatusSeeOther, resp.status)
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)
	b := newBrowser(t, app)

	resp := b.post("/register", url.Values{
		"name":      {"Alice"},
		"email":     {"not-an-email"},
		"password1": {"password123"},
		"password2": {"password321"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, "Enter a valid email address.")
	assert.Contains(t, resp.body, "Passwords do not match.")
	assert.NotContains(t, resp.body, "password123")
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	app := setupApp(t)
	newBrowser(t, app).register("Alice", "alice@example.com", "password123")

	b := newBrowser(t, app)
	wrongPassword := b.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"nope"}})
	unknownEmail := b.post("/login", url.Values{"email": {"bob@example.com"}, "password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.status)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.status)
	assert.Contains(t, wrongPassword.body, "Email not found or password incorrect, try again.")
	assert.Contains(t, unknownEmail.body, "Email not found or password incorrect, try again.")

	missing := b.post("/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, missing.status)
	assert.Contains(t, missing.body, "This field is required.")
}

func TestProtectedPagesRequireLogin(t *testing.T) {
	app := setupApp(t)
	b := newBrowser(t, app)

	for _, path := range []string{"/myrecipes/", "/snap_recipe/1", "/recipes/new"} {
		resp := b.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.status, path)
		assert.Equal(t, "/login", resp.location, path)
	}
	login := b.get("/login")
	assert.Contains(t, login.body, "Please log in first.")
}

func TestRecipeWorkflow(t *testing.T) {
	app := setupApp(t)

	alice := newBrowser(t, app)
	alice.register("Alice", "alice@example.com", "password123")
	resp := alice.post("/recipes/new", url.Values{"name": {"Tomato Soup"}})
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/myrecipes/", resp.location)

	mine := alice.get("/myrecipes/")
	assert.Equal(t, http.StatusOK, mine.status)
	assert.Contains(t, mine.body, "Added")
	assert.Contains(t, mine.body, "Tomato Soup")

	bob := newBrowser(t, app)
	bob.register("Bob", "bob@example.com", "password123")
	assert.Contains(t, bob.get("/myrecipes/").body, "You have no recipes yet.")

	// Search, then snap Alice's recipe.
	results := bob.post("/search/", url.Values{"search": {"soup"}})
	assert.Equal(t, http.StatusOK, results.status)
	assert.Contains(t, results.body, "Tomato Soup")
	assert.Contains(t, results.body, "/snap_recipe/1")

	resp = bob.get("/snap_recipe/1")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/myrecipes/", resp.location)
	bobs := bob.get("/myrecipes/")
	assert.Contains(t, bobs.body, "Tomato Soup(snap)")

	// Alice's collection is unchanged.
	mine = alice.get("/myrecipes/")
	assert.NotContains(t, mine.body, "(snap)")

	detail := bob.get("/display_recipe/" + url.PathEscape("Tomato Soup"))
	assert.Equal(t, http.StatusOK, detail.status)
	assert.Contains(t, detail.body, "Shared by Alice")

	detail = bob.get("/display_recipe/" + url.PathEscape("Tomato Soup(snap)"))
	assert.Equal(t, http.StatusOK, detail.status)
	assert.Contains(t, detail.body, "Shared by Bob")

	resp = bob.get("/snap_recipe/999")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Contains(t, bob.get("/myrecipes/").body, "That recipe does not exist.")
}

func TestStaleSessionIsTreatedAsAnonymous(t *testing.T) {
	app, db := setupAppWithDB(t)
	b := newBrowser(t, app)
	b.register("Alice", "alice@example.com", "password123")
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	resp := b.get("/myrecipes/")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/login", resp.location)

	login := b.get("/login")
	assert.Equal(t, http.StatusOK, login.status)
	assert.Contains(t, login.body, "Please log in first.")
	assert.Contains(t, b.get("/").body, "Log in or register")
}

func TestRecipeNamesWithURLCharacters(t *testing.T) {
	app := setupApp(t)
	b := newBrowser(t, app)
	b.register("Alice", "alice@example.com", "password123")
	b.post("/recipes/new", url.Values{"name": {"Salt/Pepper Steak"}})
	b.post("/recipes/new", url.Values{"name": {"Why? Pie"}})

	mine := b.get("/myrecipes/")
	assert.Contains(t, mine.body, `href="/display_recipe/Salt%2FPepper%20Steak"`)
	assert.Contains(t, mine.body, `href="/display_recipe/Why%3F%20Pie"`)

	for _, name := range []string{"Salt/Pepper Steak", "Why? Pie"} {
		detail := b.get("/display_recipe/" + url.PathEscape(name))
		assert.Equal(t, http.StatusOK, detail.status, name)
		assert.Contains(t, detail.body, "Shared by Alice", name)

		resp := apiRequest(t, app, http.MethodGet, "/api/v1/recipes/name/"+url.PathEscape(name), "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
		var view models.RecipeView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		resp.Body.Close()
		assert.Equal(t, name, view.Name)
	}
}

func TestDisplayUnknownRecipe(t *testing.T) {
	app := setupApp(t)
	resp := newBrowser(t, app).get("/display_recipe/Nonexistent")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "was not found.")
}

func TestSearchWithoutResultsSuggests(t *testing.T) {
	app := setupApp(t)
	b := newBrowser(t, app)
	b.register("Alice", "alice@example.com", "password123")
	b.post("/recipes/new", url.Values{"name": {"Lasagna"}})

	resp := b.post("/search/", url.Values{"search": {"lsgn"}})
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "No recipes found.")
	assert.Contains(t, resp.body, "Did you mean")
	assert.Contains(t, resp.body, "Lasagna")

	resp = b.get("/search/?q=lasagna")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, resp.body, "No recipes found.")

	resp = b.post("/search/", url.Values{"search": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
}

// --- JSON API ---

func apiRequest(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func issueToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp := apiRequest(t, app, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenResp map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokenResp))
	require.NotEmpty(t, tokenResp["token"])
	return tokenResp["token"]
}

func TestAPIRecipeEndpoints(t *testing.T) {
	app := setupApp(t)
	newBrowser(t, app).register("Alice", "alice@example.com", "password123")
	newBrowser(t, app).register("Bob", "bob@example.com", "password123")

	aliceToken := issueToken(t, app, "alice@example.com", "password123")
	bobToken := issueToken(t, app, "bob@example.com", "password123")

	// Create
	resp := apiRequest(t, app, http.MethodPost, "/api/v1/recipes", aliceToken, map[string]string{"name": "Soup"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var soup models.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&soup))
	resp.Body.Close()
	assert.NotZero(t, soup.ID)

	// Snap
	resp = apiRequest(t, app, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%d/snap", soup.ID), bobToken, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var snapped models.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapped))
	resp.Body.Close()
	assert.Equal(t, "Soup(snap)", snapped.Name)
	assert.NotEqual(t, soup.ID, snapped.ID)

	resp = apiRequest(t, app, http.MethodPost, "/api/v1/recipes/999/snap", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Mine
	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/mine", bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var bobs []models.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bobs))
	resp.Body.Close()
	require.Len(t, bobs, 1)
	assert.Equal(t, snapped.ID, bobs[0].ID)

	// Public search and lookup
	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/search?q=soup", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	resp.Body.Close()
	assert.Len(t, found, 2)

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/search?q=", "", nil)
	var none []models.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&none))
	resp.Body.Close()
	assert.NotNil(t, none)
	assert.Empty(t, none)

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/name/Soup", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.RecipeView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Equal(t, "Alice", view.OwnerName)

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/name/Nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPIAuthentication(t *testing.T) {
	app := setupApp(t)
	newBrowser(t, app).register("Alice", "alice@example.com", "password123")

	resp := apiRequest(t, app, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/recipes/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = apiRequest(t, app, http.MethodPost, "/api/v1/recipes", "garbage", map[string]string{"name": "Soup"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	token := issueToken(t, app, "alice@example.com", "password123")
	resp = apiRequest(t, app, http.MethodPost, "/api/v1/recipes", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
