// Package testutil provides databases, Redis, fixtures and an HTTP client with a
// cookie jar for tests across the module.
package testutil

import (
	"bytes"             // Request bodies
	"encoding/json"     // JSON bodies
	"io"                // File copies
	"mime/multipart"    // Upload requests
	"net/http"          // HTTP methods
	"net/http/httptest" // Recorded responses
	"net/url"           // Form encoding
	"path/filepath"     // Temp paths
	"strings"           // Form bodies
	"testing"           // Test helpers
	"time"              // Fixture dates and TTLs

	"campus_voting/internal/config" // Test configuration
	"campus_voting/internal/db"     // Migrations
	"campus_voting/internal/domain" // Fixtures

	"github.com/alicebob/miniredis/v2"    // In-process Redis
	"github.com/glebarez/sqlite"          // Pure Go SQLite for GORM
	"github.com/redis/go-redis/v9"        // Redis client
	"github.com/stretchr/testify/require" // Assertions
	"golang.org/x/crypto/bcrypt"          // Password hashing
	"gorm.io/gorm"                        // GORM ORM library
)

// PNG is the smallest payload recognised as an image upload
var PNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// SetupTestDB opens a migrated SQLite database private to the test
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "voting.db")
	conn, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), db.GormConfig(false))
	require.NoError(t, err, "open test database")
	require.NoError(t, db.Migrate(conn), "migrate test database")

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// SQLite allows one writer; a single connection makes concurrent tests queue
	// instead of failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// SetupTestRedis starts an in-process Redis for the test
func SetupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

// GetTestConfig returns a configuration suitable for handler tests
func GetTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppPort:         "0",
		DBDriver:        "mysql",
		JWTSecret:       "test-secret",
		SessionTTL:      time.Hour,
		CookieName:      "voting_session",
		OTPTTL:          5 * time.Minute,
		AdminUsername:   "admin",
		AdminPassword:   "admin123",
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		ResultsCacheTTL: 30 * time.Second,
	}
}

// CreateTestUser inserts a user with the given credentials
func CreateTestUser(t *testing.T, conn *gorm.DB, username, password string) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := domain.User{
		Username:     username,
		Email:        username + "@campus.edu",
		Password:     string(hash),
		StudentID:    "S-" + username,
		Phone:        "0123456789",
		AcademicYear: "2nd year",
		Department:   "Computer Science",
		DOB:          time.Date(2003, 4, 5, 0, 0, 0, 0, time.UTC),
		Gender:       "female",
	}
	require.NoError(t, conn.Create(&user).Error, "create test user")
	return user
}

// CreateTestCandidate inserts a candidate with a zero tally
func CreateTestCandidate(t *testing.T, conn *gorm.DB, name, party string) domain.Candidate {
	t.Helper()

	candidate := domain.Candidate{
		Name:        name,
		PartyName:   party,
		PartySymbol: strings.ToLower(name) + "-symbol.png",
		Photo:       strings.ToLower(name) + "-photo.png",
	}
	require.NoError(t, conn.Create(&candidate).Error, "create test candidate")
	return candidate
}

// CountVotes returns the number of vote rows for a user
func CountVotes(t *testing.T, conn *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&domain.Vote{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// Tally returns a candidate's stored counter
func Tally(t *testing.T, conn *gorm.DB, candidateID uint) int64 {
	t.Helper()
	var c domain.Candidate
	require.NoError(t, conn.First(&c, candidateID).Error)
	return c.VoteCount
}

// Client drives an http.Handler and keeps cookies between requests like a browser
type Client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewClient creates a Client with an empty cookie jar
func NewClient(t *testing.T, h http.Handler) *Client {
	return &Client{t: t, handler: h, cookies: make(map[string]*http.Cookie)}
}

// Do sends the request with stored cookies and records any cookies set in reply
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

// Get sends a GET request
func (c *Client) Get(path string) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostJSON sends body as JSON
func (c *Client) PostJSON(path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	b, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// PostForm sends an urlencoded form
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// PostMultipart sends fields and files as multipart/form-data
func (c *Client) PostMultipart(path string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(c.t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.Do(req)
}

// Delete sends a DELETE request
func (c *Client) Delete(path string) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(http.MethodDelete, path, nil))
}

// DecodeJSON decodes the response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "decode body: %s", w.Body.String())
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}
