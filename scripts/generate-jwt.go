package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	// Read JWT secret from environment
	secret := os.Getenv("AUTH_JWT_SECRET")
	issuer := os.Getenv("AUTH_ISSUER")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: AUTH_JWT_SECRET environment variable must be set")
		fmt.Fprintln(os.Stderr, "Usage: AUTH_JWT_SECRET=secret AUTH_ISSUER=https://auth.example.com go run scripts/generate-jwt.go")
		os.Exit(1)
	}

	// Claims matching what the auth middleware checks
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "test-user-id",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}

	// Create token with HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign the token
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	// Print the token
	fmt.Println(tokenString)
}
