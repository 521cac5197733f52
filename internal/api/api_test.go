package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/repository"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/testhelpers"
)

const cookieName = "recetario_session"

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	api    *testAPI
	cookie string
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	_, rdb := testhelpers.SetupRedis(t)
	logger := testhelpers.Logger()

	recipes := repository.NewRecipeRepository(db)
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	api.RegisterRoutes(router, api.Dependencies{
		Auth:      service.NewAuthService(repository.NewUserRepository(db, 4)),
		Recipes:   service.NewRecipeService(recipes, logger),
		Favorites: service.NewFavoriteService(repository.NewFavoriteRepository(db), recipes),
		Sessions:  session.NewManager(session.NewRedisStore(rdb), "test-secret", time.Hour),
		Cookie:    api.CookieConfig{Name: cookieName},
		Logger:    logger,
	})

	return &testAPI{t: t, router: router, db: db}
}

func (a *testAPI) client() *client {
	return &client{api: a}
}

func (c *client) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t := c.api.t
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: c.cookie})
	}

	w := httptest.NewRecorder()
	c.api.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name != cookieName {
			continue
		}
		if ck.MaxAge < 0 {
			c.cookie = ""
		} else {
			c.cookie = ck.Value
		}
	}

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func (c *client) register(fullName, username, email, password string) models.PublicUser {
	t := c.api.t
	t.Helper()
	w, env := c.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"full_name": fullName,
		"username":  username,
		"email":     email,
		"password":  password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user
}

func (c *client) createRecipe(payload gin.H) models.Recipe {
	t := c.api.t
	t.Helper()
	w, env := c.do(http.MethodPost, "/api/v1/recipes", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Recipe](t, env)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func recipePath(id uint) string {
	return fmt.Sprintf("/api/v1/recipes/%d", id)
}

func TestRecipeLifecycle(t *testing.T) {
	a := setupAPI(t)
	ana := a.client()

	w, env := ana.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"full_name": "Ana Lopez",
		"username":  "ana_l",
		"email":     "ana@x.com",
		"password":  "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")
	require.NotEmpty(t, ana.cookie)

	var sessionCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sessionCookie.SameSite)

	tacos := ana.createRecipe(gin.H{
		"title":        "Tacos",
		"ingredients":  []string{"tortilla", "carne"},
		"instructions": []string{"cocinar", "servir"},
		"difficulty":   "Fácil",
		"prep_time":    "10",
		"cook_time":    15,
	})
	assert.True(t, tacos.IsPublic)
	assert.Equal(t, models.StringList{"tortilla", "carne"}, tacos.Ingredients)
	assert.Equal(t, models.StringList{"cocinar", "servir"}, tacos.Instructions)
	assert.Equal(t, 10, tacos.PrepTime)
	assert.Equal(t, models.DefaultCategory, tacos.Category)

	t.Run("listing without filters includes the recipe", func(t *testing.T) {
		w, env := a.client().do(http.MethodGet, "/api/v1/recipes", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]models.RecipeWithAuthor](t, env)
		require.Len(t, list, 1)
		assert.Equal(t, "Tacos", list[0].Title)
		assert.Equal(t, "ana_l", list[0].Username)
	})

	t.Run("anonymous delete is rejected", func(t *testing.T) {
		w, env := a.client().do(http.MethodDelete, recipePath(tacos.ID), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("each fetch counts one view", func(t *testing.T) {
		_, env := a.client().do(http.MethodGet, recipePath(tacos.ID), nil)
		first := decode[models.RecipeWithAuthor](t, env)
		w, env := ana.do(http.MethodGet, recipePath(tacos.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		second := decode[models.RecipeWithAuthor](t, env)
		assert.Equal(t, first.Views+1, second.Views)
		assert.Equal(t, tacos.Views+2, second.Views)
	})

	t.Run("favorite toggles on and off", func(t *testing.T) {
		w, env := ana.do(http.MethodPost, "/api/v1/favorites", gin.H{"recipe_id": tacos.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.FavoriteAdded, decode[models.ToggleResult](t, env).Action)

		_, env = ana.do(http.MethodGet, "/api/v1/favorites", nil)
		favorites := decode[[]models.FavoriteRecipe](t, env)
		require.Len(t, favorites, 1)
		assert.Equal(t, tacos.ID, favorites[0].ID)

		_, env = ana.do(http.MethodGet, fmt.Sprintf("/api/v1/favorites/%d", tacos.ID), nil)
		assert.JSONEq(t, fmt.Sprintf(`{"recipe_id":%d,"is_favorite":true}`, tacos.ID), string(env.Data))

		_, env = ana.do(http.MethodPost, "/api/v1/favorites", gin.H{"recipe_id": fmt.Sprint(tacos.ID)})
		assert.Equal(t, models.FavoriteRemoved, decode[models.ToggleResult](t, env).Action)

		_, env = ana.do(http.MethodGet, fmt.Sprintf("/api/v1/favorites/%d", tacos.ID), nil)
		assert.JSONEq(t, fmt.Sprintf(`{"recipe_id":%d,"is_favorite":false}`, tacos.ID), string(env.Data))
	})

	t.Run("only the owner may modify", func(t *testing.T) {
		ben := a.client()
		ben.register("Ben Ruiz", "ben_r", "ben@x.com", "secret2")

		w, _ := ben.do(http.MethodPut, recipePath(tacos.ID), gin.H{"title": "Mis tacos"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		w, _ = ben.do(http.MethodDelete, recipePath(tacos.ID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w, env := ana.do(http.MethodPut, recipePath(tacos.ID), gin.H{"title": "Tacos al pastor", "servings": 6})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[models.RecipeWithAuthor](t, env)
		assert.Equal(t, "Tacos al pastor", updated.Title)
		assert.Equal(t, 6, updated.Servings)
		assert.Equal(t, models.StringList{"tortilla", "carne"}, updated.Ingredients)
	})

	t.Run("owner deletes", func(t *testing.T) {
		w, _ := ana.do(http.MethodDelete, recipePath(tacos.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = ana.do(http.MethodGet, recipePath(tacos.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	a := setupAPI(t)
	a.client().register("Ana Lopez", "ana_l", "ana@x.com", "secret1")

	tests := []struct {
		name     string
		username string
		email    string
		message  string
	}{
		{name: "same email", username: "otra", email: "ana@x.com", message: service.MsgEmailTaken},
		{name: "email casing", username: "otra", email: "ANA@X.com", message: service.MsgEmailTaken},
		{name: "username casing", username: "ANA_L", email: "otra@x.com", message: service.MsgUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := a.client().do(http.MethodPost, "/api/v1/auth/register", gin.H{
				"full_name": "Otra Persona",
				"username":  tt.username,
				"email":     tt.email,
				"password":  "secret1",
			})
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	a := setupAPI(t)

	w, env := a.client().do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"full_name": "",
		"username":  "a",
		"email":     "not-an-email",
		"password":  "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.Errors, 4)

	w, _ = a.client().do(http.MethodPost, "/api/v1/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	a := setupAPI(t)
	a.client().register("Ana Lopez", "ana_l", "ana@x.com", "secret1")

	wrongPassword, wrongEnv := a.client().do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "ana@x.com", "password": "nope123"})
	unknownEmail, unknownEnv := a.client().do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "nadie@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongEnv.Message, unknownEnv.Message)
	assert.Empty(t, wrongPassword.Result().Cookies())

	c := a.client()
	w, env := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "ANA@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, c.cookie)
	assert.Equal(t, "ana_l", decode[models.PublicUser](t, env).Username)
}

func TestSessionEndpoints(t *testing.T) {
	a := setupAPI(t)

	t.Run("me without a session", func(t *testing.T) {
		w, env := a.client().do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		c := a.client()
		c.register("Ana Lopez", "ana_l", "ana@x.com", "secret1")
		token := c.cookie

		w, _ := c.do(http.MethodPost, "/api/v1/auth/logout", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, c.cookie)

		w, _ = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		// the old token no longer authenticates
		c.cookie = token
		w, _ = c.do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile changes show up in me", func(t *testing.T) {
		c := a.client()
		c.register("Ben Ruiz", "ben_r", "ben@x.com", "secret2")

		w, env := c.do(http.MethodPut, "/api/v1/auth/profile", gin.H{"full_name": "Benito Ruiz"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Benito Ruiz", decode[models.PublicUser](t, env).FullName)

		_, env = c.do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, "Benito Ruiz", decode[models.PublicUser](t, env).FullName)
	})

	t.Run("me after the account is gone", func(t *testing.T) {
		c := a.client()
		user := c.register("Caro Diaz", "caro_d", "caro@x.com", "secret3")
		require.NoError(t, a.db.Delete(&models.User{}, user.ID).Error)

		w, _ := c.do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, c.cookie)
	})
}

func TestListRecipesByUser(t *testing.T) {
	a := setupAPI(t)
	ana := testhelpers.CreateUser(t, a.db, "ana_l", "ana@x.com")
	ben := testhelpers.CreateUser(t, a.db, "ben_r", "ben@x.com")
	testhelpers.CreateRecipe(t, a.db, ana.ID, "Tacos")
	testhelpers.CreateRecipe(t, a.db, ana.ID, "Mole secreto", testhelpers.Private)
	testhelpers.CreateRecipe(t, a.db, ben.ID, "Paella")

	_, env := a.client().do(http.MethodGet, fmt.Sprintf("/api/v1/recipes?user_id=%d", ana.ID), nil)
	list := decode[[]models.RecipeWithAuthor](t, env)
	titles := make([]string, 0, len(list))
	for _, r := range list {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"Tacos", "Mole secreto"}, titles)

	_, env = a.client().do(http.MethodGet, "/api/v1/recipes?query=paella", nil)
	list = decode[[]models.RecipeWithAuthor](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "Paella", list[0].Title)

	w, env := a.client().do(http.MethodGet, "/api/v1/recipes?max_time=abc&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "max_time")
	assert.Contains(t, env.Errors, "limit")
}

func TestPrivateRecipeIsHiddenFromOthers(t *testing.T) {
	a := setupAPI(t)
	c := a.client()
	owner := c.register("Ana Lopez", "ana_l", "ana@x.com", "secret1")
	secret := testhelpers.CreateRecipe(t, a.db, owner.ID, "Mole secreto", testhelpers.Private)

	w, _ := a.client().do(http.MethodGet, recipePath(secret.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = c.do(http.MethodGet, recipePath(secret.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecipeRequestErrors(t *testing.T) {
	a := setupAPI(t)
	c := a.client()
	c.register("Ana Lopez", "ana_l", "ana@x.com", "secret1")

	tests := []struct {
		name   string
		client *client
		method string
		path   string
		body   interface{}
		status int
	}{
		{name: "non-numeric id", client: c, method: http.MethodGet, path: "/api/v1/recipes/abc", status: http.StatusBadRequest},
		{name: "unknown id", client: c, method: http.MethodGet, path: "/api/v1/recipes/999", status: http.StatusNotFound},
		{name: "update without id", client: a.client(), method: http.MethodPut, path: "/api/v1/recipes", body: gin.H{"title": "x"}, status: http.StatusBadRequest},
		{name: "delete without id", client: a.client(), method: http.MethodDelete, path: "/api/v1/recipes", status: http.StatusBadRequest},
		{name: "create without session", client: a.client(), method: http.MethodPost, path: "/api/v1/recipes", body: gin.H{"title": "x"}, status: http.StatusUnauthorized},
		{name: "create missing fields", client: c, method: http.MethodPost, path: "/api/v1/recipes", body: gin.H{"title": ""}, status: http.StatusBadRequest},
		{name: "create invalid json", client: c, method: http.MethodPost, path: "/api/v1/recipes", body: "[1,2", status: http.StatusBadRequest},
		{name: "update unknown recipe", client: c, method: http.MethodPut, path: "/api/v1/recipes/999", body: gin.H{"title": "x"}, status: http.StatusNotFound},
		{name: "toggle without recipe id", client: c, method: http.MethodPost, path: "/api/v1/favorites", body: gin.H{}, status: http.StatusBadRequest},
		{name: "toggle unknown recipe", client: c, method: http.MethodPost, path: "/api/v1/favorites", body: gin.H{"recipe_id": 999}, status: http.StatusNotFound},
		{name: "favorites without session", client: a.client(), method: http.MethodGet, path: "/api/v1/favorites", status: http.StatusUnauthorized},
		{name: "method not allowed", client: c, method: http.MethodPatch, path: "/api/v1/recipes", status: http.StatusMethodNotAllowed},
		{name: "unknown route", client: c, method: http.MethodGet, path: "/api/v1/nothing", status: http.StatusNotFound},
		{name: "upload without storage", client: c, method: http.MethodPost, path: "/api/v1/uploads/images", status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := tt.client.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestCreateRecipeReportsEveryInvalidField(t *testing.T) {
	a := setupAPI(t)
	c := a.client()
	c.register("Ana Lopez", "ana_l", "ana@x.com", "secret1")

	w, env := c.do(http.MethodPost, "/api/v1/recipes", gin.H{
		"title":        "",
		"ingredients":  []string{},
		"instructions": []string{},
		"difficulty":   "Imposible",
		"servings":     0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	for _, field := range []string{"title", "ingredients", "instructions", "difficulty", "servings"} {
		assert.Contains(t, env.Errors, field)
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", api.Health(map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.JSONEq(t, `{"status":"degraded","version":"`+api.Version+`","dependencies":{"database":"ok","redis":"unavailable"}}`, string(env.Data))
}
