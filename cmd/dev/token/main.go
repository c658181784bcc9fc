package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/vagas/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	subject := flag.String("sub", "operator", "Subject claim of the token")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to auth.token_duration)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	d := *ttl
	if d <= 0 {
		d = cfg.Auth.TokenDuration
	}

	tok, err := mint(cfg.Auth.JWTSecret, *subject, d, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sign error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tok)
}

func mint(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
