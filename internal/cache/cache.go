// Package cache memoizes intent predictions for repeated inputs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache stores predicted intent labels by key
type Cache interface {
	Get(key string) (string, bool)
	Set(key, label string)
	Delete(key string)
	Clear()
	Len() int
}

// CacheKey derives a key from the model artifact and the input text. Keys
// from different artifacts differ, so a retrained model starts cold.
func CacheKey(modelPath, text string) string {
	h := sha256.New()
	h.Write([]byte(modelPath))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(text)))
	return "intentbot:v1:" + hex.EncodeToString(h.Sum(nil))
}
