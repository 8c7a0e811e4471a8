package db

import "campus_voting/internal/domain"

// Models lists every table the application owns
func Models() []any {
	return []any{&domain.User{}, &domain.Candidate{}, &domain.Vote{}}
}
