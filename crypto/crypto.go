// Package crypto provides the hashing and signing primitives behind account
// passwords and passport tokens.
package crypto

import (
	"crypto/rand"
	"fmt"
)

// RandomData returns size cryptographically random bytes.
func RandomData(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid random data size: %d", size)
	}

	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, fmt.Errorf("failed generating random data: %w", err)
	}

	return data, nil
}
