package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength   = 32
	MinUsernameLength   = 3
	MaxAvatarNameLength = 24
	MaxCredentialLength = 8192

	MaxStars      = 3
	MaxEnergy     = 100
	MaxStatAmount = 1000
)

// Providers accepted by the social login endpoint.
const (
	ProviderGoogle   = "google"
	ProviderApple    = "apple"
	ProviderTelegram = "telegram"
	ProviderDev      = "dev"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateUsername checks a dev-login username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}

// ValidateProvider checks the social provider name.
func ValidateProvider(provider string) error {
	switch provider {
	case ProviderGoogle, ProviderApple, ProviderTelegram, ProviderDev:
		return nil
	case "":
		return fmt.Errorf("provider cannot be empty")
	}
	return fmt.Errorf("unsupported provider: %s", provider)
}

// ValidateCredential checks the opaque credential handed over by a provider SDK.
func ValidateCredential(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("credential cannot be empty")
	}
	if len(credential) > MaxCredentialLength {
		return fmt.Errorf("credential cannot exceed %d bytes", MaxCredentialLength)
	}
	return nil
}

// ValidateAvatarName checks an avatar display name.
func ValidateAvatarName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxAvatarNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxAvatarNameLength)
	}
	return nil
}

// ValidateStars checks a star rating for a sublevel run.
func ValidateStars(stars int) error {
	if stars < 0 || stars > MaxStars {
		return fmt.Errorf("stars must be between 0 and %d", MaxStars)
	}
	return nil
}

// ValidateScore checks a sublevel score.
func ValidateScore(score int) error {
	return ValidateNonNegativeInt(int64(score), "score")
}

// ValidateStatAmount checks an energy/experience delta.
func ValidateStatAmount(amount int) error {
	if amount == 0 {
		return fmt.Errorf("amount cannot be zero")
	}
	if amount > MaxStatAmount || amount < -MaxStatAmount {
		return fmt.Errorf("amount must be within ±%d", MaxStatAmount)
	}
	return nil
}

// ValidateID checks a path identifier.
func ValidateID(id, fieldName string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

func ValidateNonNegativeInt(value int64, fieldName string) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}
	return nil
}
