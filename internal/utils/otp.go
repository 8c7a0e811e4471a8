package utils

import (
	"crypto/rand"   // Secure randomness
	"crypto/subtle" // Constant time comparison
	"fmt"           // Error wrapping
	"math/big"      // Uniform digit sampling
)

// OTPDigits is the length of emailed verification codes
const OTPDigits = 6

// GenerateOTP returns a random numeric code of the given length, zero padded
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("unsupported OTP length %d", digits)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// OTPMatches compares a submitted code with the expected one in constant time
func OTPMatches(expected, submitted string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
