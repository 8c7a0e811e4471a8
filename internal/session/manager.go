package session

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"campus_voting/internal/utils" // Session token signing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Session ids
	"github.com/sirupsen/logrus" // Logging
)

const contextKey = "session"

// Manager ties the Redis store to a signed cookie
type Manager struct {
	Store      *Store
	Secret     string
	CookieName string
	Secure     bool
}

// NewManager creates a Manager
func NewManager(store *Store, secret, cookieName string, secure bool) *Manager {
	return &Manager{Store: store, Secret: secret, CookieName: cookieName, Secure: secure}
}

// Middleware loads the cookie's session into the request context, starting an
// empty one when there is no valid cookie. Nothing is written until Save.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		if raw, err := c.Cookie(m.CookieName); err == nil && raw != "" {
			if claims, err := utils.ParseSessionToken(raw, m.Secret); err == nil {
				loaded, err := m.Store.Load(c.Request.Context(), claims.SessionID)
				switch {
				case err == nil:
					sess = loaded
				case errors.Is(err, ErrNotFound):
					// expired server-side; start over
				default:
					logrus.WithField("error", err.Error()).Error("Session load failed")
					c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session storage unavailable"})
					return
				}
			}
		}
		if sess == nil {
			sess = m.Store.New()
		}
		c.Set(contextKey, sess)
		c.Next()
	}
}

// Current returns the request's session. Handlers only run behind Middleware, so a
// missing session is a wiring bug.
func Current(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}

// Save persists the session and (re)issues the cookie
func (m *Manager) Save(c *gin.Context, sess *Session) error {
	if err := m.Store.Save(c.Request.Context(), sess); err != nil {
		return err
	}
	token, err := utils.GenerateSessionToken(sess.ID, m.Secret, m.Store.TTL())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.CookieName, token, int(m.Store.TTL().Seconds()), "/", "", m.Secure, true)
	return nil
}

// Rotate moves the session to a fresh id so an id seen before authentication
// cannot be replayed after it. Call Save afterwards.
func (m *Manager) Rotate(c *gin.Context, sess *Session) error {
	old := sess.ID
	sess.ID = uuid.NewString()
	if old == "" {
		return nil
	}
	return m.Store.Destroy(c.Request.Context(), old)
}

// Destroy drops the session server-side, clears the cookie and leaves a fresh
// empty session in the context.
func (m *Manager) Destroy(c *gin.Context, sess *Session) error {
	if err := m.Store.Destroy(c.Request.Context(), sess.ID); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.CookieName, "", -1, "/", "", m.Secure, true)
	c.Set(contextKey, m.Store.New())
	return nil
}
