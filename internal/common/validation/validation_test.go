package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "mia_plays", false},
		{"dots and dashes", "kid.one-2", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 33), true},
		{"spaces", "mia plays", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateProvider(t *testing.T) {
	for _, p := range []string{ProviderGoogle, ProviderApple, ProviderTelegram, ProviderDev} {
		assert.NoError(t, ValidateProvider(p), p)
	}
	assert.Error(t, ValidateProvider(""))
	assert.ErrorContains(t, ValidateProvider("myspace"), "unsupported provider")
}

func TestValidateStars(t *testing.T) {
	assert.NoError(t, ValidateStars(0))
	assert.NoError(t, ValidateStars(3))
	assert.Error(t, ValidateStars(-1))
	assert.Error(t, ValidateStars(4))
}

func TestValidateStatAmount(t *testing.T) {
	assert.NoError(t, ValidateStatAmount(-10))
	assert.NoError(t, ValidateStatAmount(25))
	assert.Error(t, ValidateStatAmount(0))
	assert.Error(t, ValidateStatAmount(5000))
}

func TestValidateAvatarName(t *testing.T) {
	assert.NoError(t, ValidateAvatarName("Melody"))
	assert.Error(t, ValidateAvatarName("   "))
	assert.Error(t, ValidateAvatarName(strings.Repeat("é", 25)))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("a1b2", "avatar id"))
	assert.Error(t, ValidateID("", "avatar id"))
	assert.Error(t, ValidateID("../x", "avatar id"))
}

func TestValidateCredential(t *testing.T) {
	assert.NoError(t, ValidateCredential("id-token"))
	assert.Error(t, ValidateCredential(" "))
	assert.Error(t, ValidateCredential(strings.Repeat("x", MaxCredentialLength+1)))
}
