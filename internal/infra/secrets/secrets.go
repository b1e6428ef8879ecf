package secrets

import (
	"crypto/rand"
	"log"
)

// Charset accepted by the database platform for project passwords.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// Generate returns a random string of the given length drawn from the
// password charset.
func Generate(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source, nothing sensible to do but stop.
		log.Panicf("can't read random bytes: %v", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = charset[int(b)%len(charset)]
	}
	return string(out)
}

// GeneratePassword returns a database project password.
func GeneratePassword() string {
	return Generate(32)
}

// GenerateTempPassword returns a temporary user password for the initial
// tenant admin.
func GenerateTempPassword() string {
	return Generate(16)
}
