package api

import (
	"net/http" // HTTP status codes

	"campus_voting/internal/middleware" // Route guards and logging

	"github.com/gin-gonic/gin" // Gin web framework
)

// NewRouter wires every route onto a fresh gin engine
func NewRouter(env *Env) *gin.Engine {
	setupValidators()
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.MaxMultipartMemory = env.Config.MaxUploadBytes * 2

	r.Static("/static/uploads", env.Config.UploadDir) // Candidate images
	r.GET("/healthz", HealthHandler(env))

	site := r.Group("/")
	site.Use(env.Sessions.Middleware())
	site.GET("", HomeHandler(env))

	// Voter accounts
	site.GET("register", RegisterFormHandler(env))
	site.POST("register", RegisterHandler(env))
	site.POST("register/verify", RegisterVerifyHandler(env))
	site.GET("login", LoginStatusHandler(env))
	site.POST("login", LoginHandler(env))
	site.POST("login/verify", LoginVerifyHandler(env))
	site.GET("logout", LogoutHandler(env))
	site.POST("logout", LogoutHandler(env))

	// Voting
	site.GET("vote", middleware.RequireVoter(), BallotHandler(env))
	site.POST("vote", middleware.RequireVoter(), CastVoteHandler(env))
	site.GET("results", ResultsHandler(env))

	// Administration
	site.GET("admin", AdminStatusHandler(env))
	site.POST("admin", AdminLoginHandler(env))
	admin := site.Group("admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/dashboard", ListCandidatesHandler(env))
	admin.POST("/dashboard", CreateCandidateHandler(env))
	admin.POST("/candidates/:id/delete", DeleteCandidateHandler(env))
	admin.DELETE("/candidates/:id", DeleteCandidateHandler(env))
	admin.POST("/logout", LogoutHandler(env))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}
