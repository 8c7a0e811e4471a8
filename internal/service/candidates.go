package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection
	"strings" // Trimming

	"campus_voting/internal/domain" // Domain models and errors

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// CandidateInput is a new candidate whose images are already stored
type CandidateInput struct {
	Name        string
	PartyName   string
	PartySymbol string
	Photo       string
}

// CreateCandidate inserts a candidate with a zero tally
func CreateCandidate(ctx context.Context, conn *gorm.DB, in CandidateInput) (*domain.Candidate, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.PartyName) == "" ||
		in.PartySymbol == "" || in.Photo == "" {
		return nil, domain.NewValidationError("Please fill out all fields")
	}
	candidate := domain.Candidate{
		Name:        strings.TrimSpace(in.Name),
		PartyName:   strings.TrimSpace(in.PartyName),
		PartySymbol: in.PartySymbol,
		Photo:       in.Photo,
	}
	if err := conn.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, unavailable("create candidate", err)
	}
	logrus.WithFields(logrus.Fields{
		"candidate_id": candidate.ID,
		"name":         candidate.Name,
	}).Info("Candidate created")
	return &candidate, nil
}

// ListCandidates returns the roster in creation order
func ListCandidates(ctx context.Context, conn *gorm.DB) ([]domain.Candidate, error) {
	candidates := []domain.Candidate{}
	if err := conn.WithContext(ctx).Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, unavailable("list candidates", err)
	}
	return candidates, nil
}

// DeleteCandidate removes exactly one candidate row and returns it so the caller
// can clean up its images. Vote rows that reference it are left alone.
func DeleteCandidate(ctx context.Context, conn *gorm.DB, id uint) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&candidate, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCandidateNotFound
			}
			return unavailable("find candidate", err)
		}
		res := tx.Delete(&domain.Candidate{}, id)
		if res.Error != nil {
			return unavailable("delete candidate", res.Error)
		}
		if res.RowsAffected != 1 {
			return domain.ErrCandidateNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"candidate_id": candidate.ID,
		"name":         candidate.Name,
	}).Info("Candidate deleted")
	return &candidate, nil
}
