package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

// runToken signs a service token for AUTH_MODE=jwt deployments.
func runToken(secret, userID, role string, ttl time.Duration, now time.Time, out io.Writer) error {
	if secret == "" {
		return fmt.Errorf("--secret (or TRIP_SERVICE_AUTH_JWT_SECRET) required")
	}
	if userID == "" {
		return fmt.Errorf("--user required")
	}
	if role != model.UserStatusUser && role != model.UserStatusAdmin {
		return fmt.Errorf("--role must be %q or %q", model.UserStatusUser, model.UserStatusAdmin)
	}
	tok, err := auth.NewJWTAuthorizer(secret).Sign(auth.Identity{UserID: userID, Role: role}, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func init() {
	var secret, userID, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for AUTH_MODE=jwt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(secret, userID, role, ttl, time.Now(), os.Stdout)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("TRIP_SERVICE_AUTH_JWT_SECRET"), "HS256 signing secret")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Subject user ID (required)")
	cmd.Flags().StringVarP(&role, "role", "r", model.UserStatusUser, "user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(cmd)
}
