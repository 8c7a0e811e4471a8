package api

import (
	"net/http" // HTTP status codes

	"campus_voting/internal/domain"  // Domain models
	"campus_voting/internal/service" // Vote casting
	"campus_voting/internal/session" // Server-side sessions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// VoteRequest is the ballot form
type VoteRequest struct {
	Candidate uint `form:"candidate" json:"candidate" binding:"required,gt=0"` // Chosen candidate id
}

// BallotOption is a candidate as shown on the ballot, without its running tally
type BallotOption struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PartyName   string `json:"party_name"`
	PartySymbol string `json:"party_symbol"`
	Photo       string `json:"photo"`
}

func ballotOptions(candidates []domain.Candidate) []BallotOption {
	opts := make([]BallotOption, len(candidates))
	for i, cand := range candidates {
		opts[i] = BallotOption{
			ID:          cand.ID,
			Name:        cand.Name,
			PartyName:   cand.PartyName,
			PartySymbol: cand.PartySymbol,
			Photo:       cand.Photo,
		}
	}
	return opts
}

// BallotHandler lists the candidates and whether the voter already voted
func BallotHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint) // Set by RequireVoter
		ctx := c.Request.Context()
		candidates, err := service.ListCandidates(ctx, env.DB)
		if err != nil {
			respondError(c, err)
			return
		}
		voted, err := service.HasVoted(ctx, env.DB, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"candidates": ballotOptions(candidates), "has_voted": voted})
	}
}

// CastVoteHandler records the voter's one ballot, then logs them out
func CastVoteHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uint) // Set by RequireVoter
		var req VoteRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, bindError(err, "You need to select a candidate."))
			return
		}
		vote, err := service.CastVote(c.Request.Context(), env.DB, userID, req.Candidate)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateResults(c, env)

		loggedOut := true
		if err := env.Sessions.Destroy(c, session.Current(c)); err != nil {
			// The vote is committed; a lingering session is harmless since a
			// second ballot is refused anyway.
			loggedOut = false
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Failed to end session after voting")
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Your vote has been submitted successfully!",
			"vote_id":    vote.ID,
			"logged_out": loggedOut,
		})
	}
}
