package service

import (
	"fmt" // Error wrapping

	"campus_voting/internal/domain" // Error taxonomy
)

// unavailable marks err as an infrastructure failure while keeping it inspectable
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}
