package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewCUID generates a collision-resistant identifier ordered by creation time.
func NewCUID() string {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return fmt.Sprintf("c%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("c%d%s", time.Now().UnixNano(), hex.EncodeToString(suffix[:]))
}

// Common response types

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
