package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                                  // Primary key
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"` // Unique username
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`   // Unique email
	Password     string    `gorm:"not null" json:"-"`                                     // Hashed password
	StudentID    string    `gorm:"type:varchar(64);not null" json:"student_id"`           // University student identifier
	Phone        string    `gorm:"type:varchar(32);not null" json:"phone"`                // Digits only
	AcademicYear string    `gorm:"type:varchar(32);not null" json:"academic_year"`        // e.g. "2nd year"
	Department   string    `gorm:"type:varchar(128);not null" json:"department"`          // Department name
	DOB          time.Time `gorm:"column:dob;type:date;not null" json:"dob"`              // Date of birth
	Gender       string    `gorm:"type:varchar(32);not null" json:"gender"`               // Self-described gender
	CreatedAt    time.Time `json:"created_at"`                                            // Registration time
}

// Registration is a validated, not yet persisted user. It is also what a pending
// OTP confirmation carries between requests, so the password is already hashed.
type Registration struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	StudentID    string    `json:"student_id"`
	Phone        string    `json:"phone"`
	AcademicYear string    `json:"academic_year"`
	Department   string    `json:"department"`
	DOB          time.Time `json:"dob"`
	Gender       string    `json:"gender"`
}

// User converts the registration into a row ready for insert
func (r Registration) User() User {
	return User{
		Username:     r.Username,
		Email:        r.Email,
		Password:     r.PasswordHash,
		StudentID:    r.StudentID,
		Phone:        r.Phone,
		AcademicYear: r.AcademicYear,
		Department:   r.Department,
		DOB:          r.DOB,
		Gender:       r.Gender,
	}
}
