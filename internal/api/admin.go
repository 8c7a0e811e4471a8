package api

import (
	"crypto/subtle"  // Constant time comparison
	"errors"         // Error inspection
	"mime/multipart" // Uploaded files
	"net/http"       // HTTP status codes
	"os"             // File removal
	"strconv"        // String conversion

	"campus_voting/internal/domain"  // Domain models
	"campus_voting/internal/service" // Candidate roster
	"campus_voting/internal/session" // Server-side sessions
	"campus_voting/internal/utils"   // Upload helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// AdminLoginRequest is the admin login form
type AdminLoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// CandidateForm is the multipart form that adds a candidate. Limits follow the
// candidates table columns.
type CandidateForm struct {
	Name        string                `form:"name" binding:"required,notblank,max=128"`
	PartyName   string                `form:"party_name" binding:"required,notblank,max=128"`
	PartySymbol *multipart.FileHeader `form:"party_symbol" binding:"required"`
	Photo       *multipart.FileHeader `form:"photo" binding:"required"`
}

// AdminStatusHandler reports whether this session is the administrator
func AdminStatusHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"is_admin": session.Current(c).IsAdmin})
	}
}

// AdminLoginHandler checks the static admin credentials
func AdminLoginHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminLoginRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, bindError(err, "Both username and password are required"))
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(env.Config.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(env.Config.AdminPassword)) == 1
		if !userOK || !passOK {
			logrus.WithField("client_ip", c.ClientIP()).Warn("Rejected admin login")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin credentials."})
			return
		}

		sess := session.Current(c)
		if err := env.Sessions.Rotate(c, sess); err != nil {
			respondError(c, storageErr(err))
			return
		}
		sess.IsAdmin = true
		if err := env.Sessions.Save(c, sess); err != nil {
			respondError(c, storageErr(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Admin login successful!"})
	}
}

// ListCandidatesHandler returns the roster with tallies for the dashboard
func ListCandidatesHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates, err := service.ListCandidates(c.Request.Context(), env.DB)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"candidates": candidates, "total": len(candidates)})
	}
}

// CreateCandidateHandler stores both images and inserts the candidate
func CreateCandidateHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form CandidateForm
		if err := c.ShouldBind(&form); err != nil {
			respondError(c, bindError(err, "Please fill out all fields"))
			return
		}

		symbol, err := storeImage(c, env, form.PartySymbol)
		if err != nil {
			respondError(c, err)
			return
		}
		photo, err := storeImage(c, env, form.Photo)
		if err != nil {
			removeImages(env, symbol)
			respondError(c, err)
			return
		}

		candidate, err := service.CreateCandidate(c.Request.Context(), env.DB, service.CandidateInput{
			Name:        form.Name,
			PartyName:   form.PartyName,
			PartySymbol: symbol,
			Photo:       photo,
		})
		if err != nil {
			removeImages(env, symbol, photo)
			respondError(c, err)
			return
		}
		invalidateResults(c, env)
		c.JSON(http.StatusCreated, gin.H{"message": "Candidate added successfully!", "candidate": candidate})
	}
}

// DeleteCandidateHandler removes one candidate and its images
func DeleteCandidateHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			respondError(c, domain.NewValidationError("Invalid candidate id"))
			return
		}
		candidate, err := service.DeleteCandidate(c.Request.Context(), env.DB, uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		removeImages(env, candidate.PartySymbol, candidate.Photo)
		invalidateResults(c, env)
		c.JSON(http.StatusOK, gin.H{"message": "Candidate deleted successfully!"})
	}
}

// storeImage checks an upload is a small image and saves it under a generated name
func storeImage(c *gin.Context, env *Env, fh *multipart.FileHeader) (string, error) {
	if fh.Size > env.Config.MaxUploadBytes {
		return "", domain.NewValidationError("Images must be smaller than " + strconv.FormatInt(env.Config.MaxUploadBytes>>10, 10) + " KiB")
	}
	f, err := fh.Open()
	if err != nil {
		return "", domain.NewValidationError("Could not read the uploaded file")
	}
	name, err := utils.StoredImageName(f)
	f.Close()
	if err != nil {
		if errors.Is(err, utils.ErrNotAnImage) {
			return "", domain.NewValidationError("Party symbol and photo must be PNG, JPEG, GIF or WebP images")
		}
		return "", err
	}
	dst, err := utils.UploadPath(env.Config.UploadDir, name)
	if err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", storageErr(err)
	}
	return name, nil
}

// removeImages deletes stored images, logging rather than failing
func removeImages(env *Env, names ...string) {
	for _, name := range names {
		path, err := utils.UploadPath(env.Config.UploadDir, name)
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.WithFields(logrus.Fields{
				"file":  path,
				"error": err.Error(),
			}).Warn("Failed to remove candidate image")
		}
	}
}
