package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection
	"strings" // Normalisation
	"time"    // Date of birth parsing

	"campus_voting/internal/db"     // Duplicate key detection
	"campus_voting/internal/domain" // Domain models and errors

	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// DOBLayout is the accepted date of birth format
const DOBLayout = "2006-01-02"

// RegisterInput is the raw registration form
type RegisterInput struct {
	Username        string
	StudentID       string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	AcademicYear    string
	Department      string
	DOB             string
	Gender          string
}

// PrepareRegistration hashes the password and normalises the identifying fields of a
// form that already passed request binding. The result can be inserted directly or
// parked behind an OTP confirmation.
func PrepareRegistration(in RegisterInput) (*domain.Registration, error) {
	dob, err := time.Parse(DOBLayout, in.DOB)
	if err != nil {
		return nil, domain.NewValidationError("Date of birth must look like 2001-09-30!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// multi-byte characters can pass a 72 character limit and still exceed 72 bytes
		return nil, domain.NewValidationError("Your password can be at most 72 characters long!")
	}
	if err != nil {
		return nil, err
	}

	return &domain.Registration{
		Username:     normalize(in.Username),
		Email:        normalize(in.Email),
		PasswordHash: string(hash),
		StudentID:    strings.TrimSpace(in.StudentID),
		Phone:        in.Phone,
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		Department:   strings.TrimSpace(in.Department),
		DOB:          dob,
		Gender:       strings.TrimSpace(in.Gender),
	}, nil
}

// CheckAvailability fails with ErrDuplicateUser when the username or email is taken
func CheckAvailability(ctx context.Context, conn *gorm.DB, username, email string) error {
	var count int64
	err := conn.WithContext(ctx).Model(&domain.User{}).
		Where("username = ? OR email = ?", normalize(username), normalize(email)).
		Count(&count).Error
	if err != nil {
		return unavailable("check availability", err)
	}
	if count > 0 {
		return domain.ErrDuplicateUser
	}
	return nil
}

// Register inserts the user. The pre-check keeps the table untouched for the common
// case; the unique indexes catch anyone who slipped in between.
func Register(ctx context.Context, conn *gorm.DB, reg *domain.Registration) (*domain.User, error) {
	if err := CheckAvailability(ctx, conn, reg.Username, reg.Email); err != nil {
		return nil, err
	}
	user := reg.User()
	if err := conn.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, unavailable("create user", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return &user, nil
}

// Authenticate returns the user whose stored hash matches password
func Authenticate(ctx context.Context, conn *gorm.DB, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.NewValidationError("Both username and password are required")
	}
	var user domain.User
	err := conn.WithContext(ctx).Where("username = ?", normalize(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, unavailable("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &user, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
