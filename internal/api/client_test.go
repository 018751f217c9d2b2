package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/picnichood/picnic-cli/internal/api"
	"github.com/picnichood/picnic-cli/internal/session"
	"github.com/picnichood/picnic-cli/internal/state"
)

const (
	testEmail    = "anna@example.com"
	testPassword = "correct horse"
)

type testEnv struct {
	server  *httptest.Server
	client  *api.Client
	session *session.Store

	secret   []byte
	articles []api.Article
	orders   []api.Order
	lastAuth string
}

// newTestEnv spins up a fake PicnicHood API: bcrypt-checked login issuing
// HS256 tokens, and token-gated data endpoints.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		secret: []byte("test-jwt-secret"),
		articles: []api.Article{
			{ID: "a1", Name: "Apples", Price: 2.5, Category: "Fruits"},
			{ID: "a2", Name: "Milk", Price: 1.0, Category: "Dairy"},
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	e := echo.New()
	e.HideBanner = true

	e.POST("/auth/login", func(c echo.Context) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid body"})
		}
		if req.Email != testEmail || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		}
		claims := jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(env.secret)
		require.NoError(t, err)
		return c.JSON(http.StatusOK, api.LoginResponse{
			Token: token,
			User:  api.User{ID: "u1", Username: "anna", Email: testEmail, Role: "user", Community: "c1"},
		})
	})

	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("Authorization")
			env.lastAuth = raw
			_, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
				return env.secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			}
			return next(c)
		}
	}

	authed := e.Group("", requireAuth)
	authed.GET("/article", func(c echo.Context) error {
		return c.JSON(http.StatusOK, env.articles)
	})
	authed.GET("/order", func(c echo.Context) error {
		return c.JSON(http.StatusOK, env.orders)
	})
	authed.POST("/order", func(c echo.Context) error {
		var draft api.OrderDraft
		if err := c.Bind(&draft); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid body"})
		}
		if len(draft.Items) == 0 {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "order has no items"})
		}
		return c.JSON(http.StatusCreated, map[string]string{"_id": "o1"})
	})
	authed.POST("/community/:id/vote", func(c echo.Context) error {
		var req struct {
			TimeSlot string `json:"timeSlot"`
		}
		if err := c.Bind(&req); err != nil || req.TimeSlot == "" {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "timeSlot required"})
		}
		return c.NoContent(http.StatusOK)
	})
	authed.GET("/user/community", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"communityId": "c1"})
	})

	env.server = httptest.NewServer(e)
	t.Cleanup(env.server.Close)

	db, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	env.session, err = session.New(db)
	require.NoError(t, err)

	env.client = api.NewClient(env.server.URL, env.session)
	return env
}

func (env *testEnv) login(t *testing.T) {
	t.Helper()
	resp, err := env.client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, env.session.Set(resp.Token, resp.User))
}

func TestClient_LoginStoresUsableSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resp, err := env.client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "anna", resp.User.Username)

	require.NoError(t, env.session.Set(resp.Token, resp.User))

	articles, err := env.client.Articles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, resp.Token, env.lastAuth, "stored token must ride the Authorization header")
}

func TestClient_LoginRejectedCarriesMessage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.client.Login(context.Background(), testEmail, "wrong")
	require.Error(t, err)

	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, "invalid credentials", reqErr.Message)
	assert.Empty(t, env.session.Token(), "a failed login must not create a session")
}

func TestClient_AuthExpiredClearsSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.NoError(t, env.session.Set("stale-token", api.User{ID: "u1", Username: "anna"}))

	articles, err := env.client.Articles(context.Background())
	require.ErrorIs(t, err, api.ErrAuthExpired)
	assert.Nil(t, articles, "no data may be applied after auth expiry")
	assert.Empty(t, env.session.Token())
	assert.Nil(t, env.session.User())
}

func TestClient_RequestErrorCarriesServerMessage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)

	err := env.client.Vote(context.Background(), "c1", "")
	require.Error(t, err)

	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	assert.Equal(t, "timeSlot required", reqErr.Message)
	assert.NotEmpty(t, env.session.Token(), "non-401 failures keep the session")
}

func TestClient_PlaceOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)

	draft := api.OrderDraft{
		Items:        []api.OrderItem{{Article: "a1", Quantity: 2}},
		Community:    "c1",
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 1),
		Status:       "pending",
		TotalAmount:  5.0,
	}
	require.NoError(t, env.client.PlaceOrder(context.Background(), draft))

	err := env.client.PlaceOrder(context.Background(), api.OrderDraft{Status: "pending"})
	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
}

func TestClient_UserCommunity(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)

	id, err := env.client.UserCommunity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
}

func TestClient_OrderHistoryJoinsArticles(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	env.orders = []api.Order{
		{
			ID:     "o1",
			Status: "pending",
			Items: []api.OrderItem{
				{Article: "a1", Quantity: 2},
				{Article: "gone", Quantity: 1},
			},
			TotalAmount: 5.0,
		},
	}

	history, err := env.client.OrderHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Lines, 2)

	assert.Equal(t, "Apples", history[0].Lines[0].Article.Name)
	assert.Equal(t, 2, history[0].Lines[0].Quantity)

	// A line whose article vanished from the catalog degrades to a
	// placeholder instead of failing the view.
	missing := history[0].Lines[1]
	assert.Equal(t, "Unknown Article", missing.Article.Name)
	assert.Equal(t, "gone", missing.Article.ID)
	assert.Zero(t, missing.Article.Price)
}

func TestClient_SessionGoneMeansUnauthorized(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.login(t)
	require.NoError(t, env.session.Clear())

	_, err := env.client.Articles(context.Background())
	require.True(t, errors.Is(err, api.ErrAuthExpired))
}
