package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_voting/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb, time.Hour), mr
}

func TestStoreSaveLoadDestroy(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := store.New()
	require.NotEmpty(t, sess.ID)
	sess.LogIn(7, "alice")
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists("session:"+sess.ID))

	loaded, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(7), loaded.UserID)
	assert.Equal(t, "alice", loaded.Username)
	assert.True(t, loaded.LoggedIn())

	require.NoError(t, store.Destroy(ctx, sess.ID))
	_, err = store.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := store.New()
	require.NoError(t, store.Save(ctx, sess))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogInClearsPending(t *testing.T) {
	sess := &Session{Pending: &PendingOTP{Purpose: PurposeLogin, Code: "123456"}}
	sess.LogIn(3, "bob")
	assert.Nil(t, sess.Pending)
	assert.True(t, sess.LoggedIn())
}

func TestPendingOTPExpired(t *testing.T) {
	now := time.Now()
	p := &PendingOTP{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, p.Expired(now))
	assert.True(t, p.Expired(now.Add(time.Minute)))
}

func TestManagerCookieRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, _ := newTestStore(t)
	m := NewManager(store, "secret", "sid", false)

	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/login", func(c *gin.Context) {
		sess := Current(c)
		sess.LogIn(42, "carol")
		require.NoError(t, m.Save(c, sess))
		c.Status(http.StatusOK)
	})
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": Current(c).UserID})
	})
	r.POST("/logout", func(c *gin.Context) {
		require.NoError(t, m.Destroy(c, Current(c)))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())

	// A forged cookie is treated as no session at all
	forged := httptest.NewRequest(http.MethodGet, "/me", nil)
	forged.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, forged)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String(), "destroyed session must not come back")
}

func TestMiddlewareStorageDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, mr := newTestStore(t)
	m := NewManager(store, "secret", "sid", false)

	token := func() *http.Cookie {
		r := gin.New()
		r.Use(m.Middleware())
		r.POST("/x", func(c *gin.Context) {
			require.NoError(t, m.Save(c, Current(c)))
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		return w.Result().Cookies()[0]
	}()

	mr.Close()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestVerifyOTP(t *testing.T) {
	now := time.Now()
	fresh := func() *Session {
		return &Session{Pending: &PendingOTP{
			Purpose:   PurposeLogin,
			Code:      "123456",
			ExpiresAt: now.Add(5 * time.Minute),
			UserID:    9,
		}}
	}

	t.Run("correct code consumes pending", func(t *testing.T) {
		sess := fresh()
		p, err := sess.VerifyOTP(PurposeLogin, "123456", now)
		require.NoError(t, err)
		assert.Equal(t, uint(9), p.UserID)
		assert.Nil(t, sess.Pending)
	})

	t.Run("nothing pending", func(t *testing.T) {
		_, err := (&Session{}).VerifyOTP(PurposeLogin, "123456", now)
		assert.ErrorIs(t, err, domain.ErrNoPendingOTP)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		sess := fresh()
		_, err := sess.VerifyOTP(PurposeRegister, "123456", now)
		assert.ErrorIs(t, err, domain.ErrNoPendingOTP)
		assert.NotNil(t, sess.Pending, "a mismatched purpose must not discard the pending code")
	})

	t.Run("expired", func(t *testing.T) {
		sess := fresh()
		_, err := sess.VerifyOTP(PurposeLogin, "123456", now.Add(6*time.Minute))
		assert.ErrorIs(t, err, domain.ErrOTPExpired)
		assert.Nil(t, sess.Pending)
	})

	t.Run("wrong code until locked out", func(t *testing.T) {
		sess := fresh()
		for i := 1; i < MaxOTPAttempts; i++ {
			_, err := sess.VerifyOTP(PurposeLogin, "000000", now)
			assert.ErrorIs(t, err, domain.ErrInvalidOTP)
			require.NotNil(t, sess.Pending)
			assert.Equal(t, i, sess.Pending.Attempts)
		}
		_, err := sess.VerifyOTP(PurposeLogin, "000000", now)
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)
		assert.Nil(t, sess.Pending)

		_, err = sess.VerifyOTP(PurposeLogin, "123456", now)
		assert.ErrorIs(t, err, domain.ErrNoPendingOTP, "correct code after lockout is refused")
	})
}
