package utils

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header mimetype recognises
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("abc-123", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", claims.SessionID)
}

func TestParseSessionTokenRejects(t *testing.T) {
	valid, err := GenerateSessionToken("abc-123", "secret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateSessionToken("abc-123", "secret", -time.Minute)
	require.NoError(t, err)
	empty, err := GenerateSessionToken("", "secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other"},
		{"expired", expired, "secret"},
		{"garbage", "not-a-token", "secret"},
		{"tampered", valid[:len(valid)-2] + "xx", "secret"},
		{"empty session id", empty, "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidSessionToken)
		})
	}
}

func TestGenerateOTP(t *testing.T) {
	digitsOnly := regexp.MustCompile(`^[0-9]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(OTPDigits)
		require.NoError(t, err)
		assert.Regexp(t, digitsOnly, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should vary")

	_, err := GenerateOTP(0)
	assert.Error(t, err)
}

func TestOTPMatches(t *testing.T) {
	assert.True(t, OTPMatches("123456", "123456"))
	assert.False(t, OTPMatches("123456", "654321"))
	assert.False(t, OTPMatches("123456", "12345"))
	assert.False(t, OTPMatches("", ""))
}

func TestCacheHelpers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	var out map[string]int
	found, err := GetCache(ctx, rdb, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", map[string]int{"a": 1}, time.Minute))
	found, err = GetCache(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, out["a"])

	mr.FastForward(2 * time.Minute)
	found, err = GetCache(ctx, rdb, "k", &out)
	require.NoError(t, err)
	assert.False(t, found, "entry should expire")

	require.NoError(t, SetCache(ctx, rdb, "a", 1, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "b", 2, time.Minute))
	require.NoError(t, DeleteCache(ctx, rdb, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
	require.NoError(t, DeleteCache(ctx, rdb))
}

func TestFillCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	t.Run("stores what it loaded", func(t *testing.T) {
		v, err := FillCache(ctx, rdb, "tally", "tally:gen", time.Minute, func() (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)

		var out int
		found, err := GetCache(ctx, rdb, "tally", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 7, out)
	})

	t.Run("invalidation during load skips the write", func(t *testing.T) {
		require.NoError(t, InvalidateCache(ctx, rdb, "tally", "tally:gen"))
		v, err := FillCache(ctx, rdb, "tally", "tally:gen", time.Minute, func() (int, error) {
			// a vote commits and invalidates while the old tally is being read
			require.NoError(t, InvalidateCache(ctx, rdb, "tally", "tally:gen"))
			return 1, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, v, "the caller still gets the value")
		assert.False(t, mr.Exists("tally"), "a read that raced an invalidation must not be cached")
	})

	t.Run("load error is returned and nothing cached", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := FillCache(ctx, rdb, "tally", "tally:gen", time.Minute, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("tally"))
	})

	t.Run("redis down still loads", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		v, err := FillCache(ctx, down, "tally", "tally:gen", time.Minute, func() (int, error) { return 3, nil })
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})
}

func TestInvalidateCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "tally", 1, time.Minute))
	require.NoError(t, InvalidateCache(ctx, rdb, "tally", "tally:gen"))
	require.NoError(t, InvalidateCache(ctx, rdb, "tally", "tally:gen"))
	assert.False(t, mr.Exists("tally"))
	gen, err := mr.Get("tally:gen")
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
}

func TestStoredImageName(t *testing.T) {
	name, err := StoredImageName(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	other, err := StoredImageName(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.NotEqual(t, name, other, "identical uploads get distinct names")

	_, err = StoredImageName(strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestUploadPath(t *testing.T) {
	p, err := UploadPath("static/uploads", "a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("static/uploads", "a.png"), p)

	for _, bad := range []string{"../etc/passwd", "sub/a.png", "..", "."} {
		_, err := UploadPath("static/uploads", bad)
		assert.Error(t, err, bad)
	}
}
