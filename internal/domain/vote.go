package domain

import "time"

// Vote Model. The unique index on UserID is what keeps a voter to one ballot even
// when two submissions race. CandidateID deliberately has no foreign key: deleting a
// candidate leaves its vote rows in place so those voters still count as having voted.
type Vote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                // Primary key
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"` // Voter, at most one row each
	CandidateID uint      `gorm:"index;not null" json:"candidate_id"`  // Chosen candidate
	CreatedAt   time.Time `json:"created_at"`
}
