package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection

	"campus_voting/internal/db"     // Duplicate key detection
	"campus_voting/internal/domain" // Domain models and errors

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// HasVoted reports whether a vote row exists for the user
func HasVoted(ctx context.Context, conn *gorm.DB, userID uint) (bool, error) {
	var count int64
	if err := conn.WithContext(ctx).Model(&domain.Vote{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, unavailable("count votes", err)
	}
	return count > 0, nil
}

// CastVote records the user's single ballot and bumps the candidate's counter in
// one transaction: either both happen or neither does.
func CastVote(ctx context.Context, conn *gorm.DB, userID, candidateID uint) (*domain.Vote, error) {
	var vote domain.Vote
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate domain.Candidate
		if err := tx.Select("id").First(&candidate, candidateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCandidateNotFound
			}
			return unavailable("find candidate", err)
		}

		var existing int64
		if err := tx.Model(&domain.Vote{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return unavailable("count votes", err)
		}
		if existing > 0 {
			return domain.ErrAlreadyVoted
		}

		vote = domain.Vote{UserID: userID, CandidateID: candidateID}
		if err := tx.Create(&vote).Error; err != nil {
			// lost a race with a concurrent submission from the same voter
			if db.IsDuplicateKey(err) {
				return domain.ErrAlreadyVoted
			}
			return unavailable("insert vote", err)
		}

		res := tx.Model(&domain.Candidate{}).Where("id = ?", candidateID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return unavailable("increment tally", res.Error)
		}
		if res.RowsAffected != 1 {
			return domain.ErrCandidateNotFound
		}
		return nil // Commit transaction
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			logrus.WithFields(logrus.Fields{
				"user_id":      userID,
				"candidate_id": candidateID,
				"error":        err.Error(),
			}).Error("Vote failed")
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":      userID,
		"candidate_id": candidateID,
		"vote_id":      vote.ID,
	}).Info("Vote cast")
	return &vote, nil
}

// Results reads every candidate's tally, highest first. Equal counts fall back to
// creation order, so the earlier candidate leads a tie.
func Results(ctx context.Context, conn *gorm.DB) (*domain.Results, error) {
	var tallies []domain.Tally
	err := conn.WithContext(ctx).Model(&domain.Candidate{}).
		Select("id, name, party_name, votes").
		Order("votes DESC").Order("id ASC").
		Scan(&tallies).Error
	if err != nil {
		return nil, unavailable("read results", err)
	}
	return summarize(tallies), nil
}

func summarize(tallies []domain.Tally) *domain.Results {
	if tallies == nil {
		tallies = []domain.Tally{}
	}
	res := &domain.Results{Tallies: tallies}
	if len(tallies) > 0 {
		winner := tallies[0]
		res.Winner = &winner
		res.Tied = len(tallies) > 1 && winner.Votes > 0 && tallies[1].Votes == winner.Votes
	}
	return res
}
