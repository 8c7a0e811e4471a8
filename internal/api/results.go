package api

import (
	"net/http" // HTTP status codes

	"campus_voting/internal/domain"  // Domain models
	"campus_voting/internal/service" // Results aggregation
	"campus_voting/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// ResultsHandler returns every tally, highest first, with the leader
func ResultsHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached domain.Results
		// If cached data found, return it
		found, err := utils.GetCache(ctx, env.Redis, utils.ResultsCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"results": cached.Tallies,
				"winner":  cached.Winner,
				"tied":    cached.Tied,
				"cached":  true, // Indicate response is from cache
			})
			return
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Results cache read failed")
		}

		// Only cached if no vote or roster change lands while the tally is read
		res, err := utils.FillCache(ctx, env.Redis, utils.ResultsCacheKey, utils.ResultsGenerationKey,
			env.Config.ResultsCacheTTL, func() (*domain.Results, error) {
				return service.Results(ctx, env.DB)
			})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"results": res.Tallies,
			"winner":  res.Winner,
			"tied":    res.Tied,
			"cached":  false,
		})
	}
}

// invalidateResults drops the cached tally after anything that changes it
func invalidateResults(c *gin.Context, env *Env) {
	if err := utils.InvalidateCache(c.Request.Context(), env.Redis, utils.ResultsCacheKey, utils.ResultsGenerationKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate results cache")
	}
}
