package validate

import (
	"fmt"
	"regexp"

	"github.com/samber/lo"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// userIDRx accepts identity-provider subject ids: letters, digits and _-.:|@
var userIDRx = regexp.MustCompile(`^[A-Za-z0-9_\-.:|@]{1,128}$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIDRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIDRx.String())
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// OneOf accepts the empty string and any of allowed.
func OneOf(field, v string, allowed ...string) error {
	if v == "" || lo.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%s must be one of %v", field, allowed)
}

// -------- Request specific helpers ----------

// UpsertUser validates a sign-in upsert. userId and email are mandatory.
func UpsertUser(userID, email, name, imageURL, status string, statuses ...string) error {
	if err := UserID(userID); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := MaxLen("name", name, 200); err != nil {
		return err
	}
	if err := MaxLen("imageUrl", imageURL, 2048); err != nil {
		return err
	}
	return OneOf("status", status, statuses...)
}
