package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidHost(t *testing.T) {
	valid := []string{"localhost", "127.0.0.1", "::1", "db.internal", "db-01.example.com"}
	for _, host := range valid {
		assert.True(t, IsValidHost(host), "expected %q to be valid", host)
	}

	invalid := []string{"", ".starts-with-dot", "ends-with-dot.", "-starts-with-hyphen", "bad host name"}
	for _, host := range invalid {
		assert.False(t, IsValidHost(host), "expected %q to be invalid", host)
	}
}
