package main

import (
	"fmt"
	"log"

	"github.com/dmitrymomot/twofa/pkg/totp"
)

func main() {
	// Generate a base64-encoded encryption key for environment variables
	encodedKey, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encoded encryption key: %v", err)
	}

	fmt.Printf("Generated encryption key (for the TWOFA_ENCRYPTION_KEY env var):\n%s\n", encodedKey)
}
