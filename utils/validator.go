package utils

import (
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct runs validator/v10 tag validation over obj.
func ValidateStruct(obj interface{}) error {
	return validate.Struct(obj)
}

// IsValidHost validates a data-source host: localhost, IPv4/IPv6, or a plain
// domain name.
func IsValidHost(host string) bool {
	if host == "" {
		return false
	}

	if strings.ToLower(host) == "localhost" {
		return true
	}

	if net.ParseIP(host) != nil {
		return true
	}

	// Domain name validation - basic check for valid characters
	if len(host) > 253 {
		return false
	}
	for _, char := range host {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '-' || char == '_') {
			return false
		}
	}
	// Shouldn't start or end with dot/hyphen
	return !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".") &&
		!strings.HasPrefix(host, "-") && !strings.HasSuffix(host, "-")
}
