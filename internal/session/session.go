package session

import (
	"time" // OTP expiry

	"campus_voting/internal/domain" // Domain models and errors
	"campus_voting/internal/utils"  // OTP comparison
)

// OTP purposes
const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
)

// MaxOTPAttempts is how many wrong codes a pending verification tolerates
const MaxOTPAttempts = 5

// Session is the server-side state behind one browser cookie
type Session struct {
	ID       string      `json:"id"`
	UserID   uint        `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	IsAdmin  bool        `json:"is_admin,omitempty"`
	Pending  *PendingOTP `json:"pending,omitempty"`
}

// PendingOTP is a verification code waiting to be confirmed by the same session
type PendingOTP struct {
	Purpose      string               `json:"purpose"`
	Code         string               `json:"code"`
	Email        string               `json:"email"`
	ExpiresAt    time.Time            `json:"expires_at"`
	Attempts     int                  `json:"attempts"`
	UserID       uint                 `json:"user_id,omitempty"`      // login
	Username     string               `json:"username,omitempty"`     // login
	Registration *domain.Registration `json:"registration,omitempty"` // register
}

// Expired reports whether the code can no longer be used
func (p *PendingOTP) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// LoggedIn reports whether a voter is authenticated on this session
func (s *Session) LoggedIn() bool {
	return s.UserID != 0
}

// LogIn records an authenticated voter and drops any pending verification
func (s *Session) LogIn(userID uint, username string) {
	s.UserID = userID
	s.Username = username
	s.Pending = nil
}

// VerifyOTP checks code against the pending verification for purpose. A correct
// code consumes the pending state and returns it. Wrong codes count against
// MaxOTPAttempts and expired codes are discarded; the session must be saved
// afterwards either way.
func (s *Session) VerifyOTP(purpose, code string, now time.Time) (*PendingOTP, error) {
	p := s.Pending
	if p == nil || p.Purpose != purpose {
		return nil, domain.ErrNoPendingOTP
	}
	if p.Expired(now) {
		s.Pending = nil
		return nil, domain.ErrOTPExpired
	}
	if !utils.OTPMatches(p.Code, code) {
		p.Attempts++
		if p.Attempts >= MaxOTPAttempts {
			s.Pending = nil
		}
		return nil, domain.ErrInvalidOTP
	}
	s.Pending = nil
	return p, nil
}
