package api

import (
	"net/http" // HTTP status codes
	"time"     // OTP expiry

	"campus_voting/internal/domain"  // Error taxonomy
	"campus_voting/internal/service" // Account rules
	"campus_voting/internal/session" // Server-side sessions
	"campus_voting/internal/utils"   // OTP generation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// RegisterRequest is the registration form. Limits follow the users table columns;
// ConfirmPassword comes first so a mismatch is reported before a short password.
type RegisterRequest struct {
	Username        string `form:"username" json:"username" binding:"required,notblank,max=64"`
	StudentID       string `form:"student_id" json:"student_id" binding:"required,notblank,max=64"`
	Email           string `form:"email" json:"email" binding:"required,email,max=191"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required,eqfield=Password"`
	Password        string `form:"password" json:"password" binding:"required,min=6,max=72"` // bcrypt reads at most 72 bytes
	Phone           string `form:"phone" json:"phone" binding:"required,number,min=10,max=32"`
	AcademicYear    string `form:"academic_year" json:"academic_year" binding:"required,notblank,max=32"`
	Department      string `form:"department" json:"department" binding:"required,notblank,max=128"`
	DOB             string `form:"dob" json:"dob" binding:"required,datetime=2006-01-02"` // YYYY-MM-DD
	Gender          string `form:"gender" json:"gender" binding:"required,notblank,max=32"`
}

func (r RegisterRequest) input() service.RegisterInput {
	return service.RegisterInput{
		Username:        r.Username,
		StudentID:       r.StudentID,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		Phone:           r.Phone,
		AcademicYear:    r.AcademicYear,
		Department:      r.Department,
		DOB:             r.DOB,
		Gender:          r.Gender,
	}
}

// LoginRequest is the voter login form
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // Username must be provided
	Password string `form:"password" json:"password" binding:"required"` // Password must be provided
}

// OTPRequest confirms an emailed code
type OTPRequest struct {
	Code string `form:"otp" json:"otp" binding:"required,numeric,len=6"`
}

// HomeHandler describes the site and the caller's session
func HomeHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		c.JSON(http.StatusOK, gin.H{
			"name":        "Campus Voting",
			"logged_in":   sess.LoggedIn(),
			"username":    sess.Username,
			"otp_enabled": env.Config.OTPEnabled,
		})
	}
}

// RegisterFormHandler lists what the registration form expects
func RegisterFormHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"fields": []string{"username", "student_id", "email", "password", "confirm_password",
				"phone", "academic_year", "department", "dob", "gender"},
			"otp_required": env.Config.OTPEnabled,
		})
	}
}

// RegisterHandler validates the form and creates the voter, or parks the
// registration in the session until the emailed code is confirmed.
func RegisterHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, bindError(err, "Please fill out all fields!"))
			return
		}
		reg, err := service.PrepareRegistration(req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()

		if !env.Config.OTPEnabled {
			user, err := service.Register(ctx, env.DB, reg)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"message": "You're registered! You can now log in.", "user_id": user.ID})
			return
		}

		// Fail early instead of after the voter typed in the code
		if err := service.CheckAvailability(ctx, env.DB, reg.Username, reg.Email); err != nil {
			respondError(c, err)
			return
		}
		pending := &session.PendingOTP{
			Purpose:      session.PurposeRegister,
			Email:        reg.Email,
			Registration: reg,
		}
		if err := beginVerification(c, env, pending); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message": "We sent a verification code to " + reg.Email + ".",
			"verify":  "/register/verify",
		})
	}
}

// RegisterVerifyHandler creates the parked registration once the code matches
func RegisterVerifyHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, ok := confirmVerification(c, env, session.PurposeRegister)
		if !ok {
			return
		}
		if pending.Registration == nil {
			respondError(c, domain.ErrNoPendingOTP)
			return
		}
		user, err := service.Register(c.Request.Context(), env.DB, pending.Registration)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "You're registered! You can now log in.", "user_id": user.ID})
	}
}

// LoginStatusHandler reports who is logged in on this session
func LoginStatusHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		c.JSON(http.StatusOK, gin.H{
			"logged_in":    sess.LoggedIn(),
			"username":     sess.Username,
			"otp_pending":  sess.Pending != nil && sess.Pending.Purpose == session.PurposeLogin,
			"otp_required": env.Config.OTPEnabled,
		})
	}
}

// LoginHandler checks the password and either logs the voter in or emails a code
func LoginHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, bindError(err, "Both username and password are required"))
			return
		}
		user, err := service.Authenticate(c.Request.Context(), env.DB, req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		if env.Config.OTPEnabled {
			pending := &session.PendingOTP{
				Purpose:  session.PurposeLogin,
				Email:    user.Email,
				UserID:   user.ID,
				Username: user.Username,
			}
			if err := beginVerification(c, env, pending); err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"message": "We sent a verification code to your email.",
				"verify":  "/login/verify",
			})
			return
		}

		if err := establish(c, env, user.ID, user.Username); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Welcome back! You are logged in.", "username": user.Username})
	}
}

// LoginVerifyHandler completes an OTP login
func LoginVerifyHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending, ok := confirmVerification(c, env, session.PurposeLogin)
		if !ok {
			return
		}
		if err := establish(c, env, pending.UserID, pending.Username); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Welcome back! You are logged in.", "username": pending.Username})
	}
}

// LogoutHandler ends the session
func LogoutHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := env.Sessions.Destroy(c, session.Current(c)); err != nil {
			respondError(c, storageErr(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
	}
}

// beginVerification stores a fresh code in the session and emails it
func beginVerification(c *gin.Context, env *Env, pending *session.PendingOTP) error {
	code, err := utils.GenerateOTP(utils.OTPDigits)
	if err != nil {
		return err
	}
	pending.Code = code
	pending.ExpiresAt = time.Now().Add(env.Config.OTPTTL)

	sess := session.Current(c)
	sess.Pending = pending
	if err := env.Sessions.Save(c, sess); err != nil {
		return storageErr(err)
	}
	if err := env.Mailer.SendOTP(c.Request.Context(), pending.Email, code, pending.Purpose); err != nil {
		logrus.WithFields(logrus.Fields{
			"purpose": pending.Purpose,
			"error":   err.Error(),
		}).Error("Failed to send verification code")
		return storageErr(err)
	}
	return nil
}

// confirmVerification binds the submitted code and checks it against the session.
// It writes the error response itself and reports whether the caller may continue.
func confirmVerification(c *gin.Context, env *Env, purpose string) (*session.PendingOTP, bool) {
	var req OTPRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err, "Enter the 6 digit code from your email."))
		return nil, false
	}
	sess := session.Current(c)
	pending, verifyErr := sess.VerifyOTP(purpose, req.Code, time.Now())
	// Attempts and discarded codes must survive the request
	if err := env.Sessions.Save(c, sess); err != nil {
		respondError(c, storageErr(err))
		return nil, false
	}
	if verifyErr != nil {
		respondError(c, verifyErr)
		return nil, false
	}
	return pending, true
}

// establish logs the voter into a freshly rotated session
func establish(c *gin.Context, env *Env, userID uint, username string) error {
	sess := session.Current(c)
	if err := env.Sessions.Rotate(c, sess); err != nil {
		return storageErr(err)
	}
	sess.LogIn(userID, username)
	if err := env.Sessions.Save(c, sess); err != nil {
		return storageErr(err)
	}
	return nil
}
