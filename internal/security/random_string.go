package security

import (
	"crypto/rand"
	"errors"
)

const (
	// TokenAlphabet is used for opaque identifiers such as session ids.
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// PasswordAlphabet drops characters that are easy to misread (0/O, 1/l/I).
	PasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

var (
	errNegativeLength   = errors.New("length must be non-negative")
	errEmptyAlphabet    = errors.New("alphabet must not be empty")
	errAlphabetTooLarge = errors.New("alphabet must have at most 256 characters")
)

// RandomString draws length bytes uniformly from alphabet using crypto/rand.
// Random bytes at or above the largest multiple of len(alphabet) are
// rejected so every character is equally likely.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case len(alphabet) == 0:
		return "", errEmptyAlphabet
	case len(alphabet) > 256:
		return "", errAlphabetTooLarge
	}

	size := len(alphabet)
	limit := 256 - 256%size
	result := make([]byte, 0, length)
	buffer := make([]byte, length)
	for len(result) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, value := range buffer {
			if int(value) >= limit {
				continue
			}
			result = append(result, alphabet[int(value)%size])
			if len(result) == length {
				break
			}
		}
	}
	return string(result), nil
}

func Token(length int) (string, error) {
	return RandomString(length, TokenAlphabet)
}

func Password(length int) (string, error) {
	return RandomString(length, PasswordAlphabet)
}
