package util

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a new UUID string.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortUUID generates a compact, URL-safe unique identifier.
func GenShortUUID() string {
	return shortuuid.New()
}
