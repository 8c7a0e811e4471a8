package domain

import "time"

// Candidate Model
type Candidate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                           // Primary key
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`         // Candidate name
	PartyName   string    `gorm:"type:varchar(128);not null" json:"party_name"`   // Party name
	PartySymbol string    `gorm:"type:varchar(255);not null" json:"party_symbol"` // Stored symbol image filename
	Photo       string    `gorm:"type:varchar(255);not null" json:"photo"`        // Stored photo filename
	VoteCount   int64     `gorm:"column:votes;not null;default:0" json:"votes"`   // Running tally, only changed by vote casting
	CreatedAt   time.Time `json:"created_at"`
}

// Tally is one row of the results table
type Tally struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	PartyName string `json:"party_name"`
	Votes     int64  `json:"votes"`
}

// Results is the ordered tally with the reported leader
type Results struct {
	Tallies []Tally `json:"results"`
	Winner  *Tally  `json:"winner"`
	Tied    bool    `json:"tied"` // More than one candidate shares the leading non-zero count
}
