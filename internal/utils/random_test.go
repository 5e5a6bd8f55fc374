package utils

import (
	"regexp"
	"testing"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomOTP(t *testing.T) {
	for range 50 {
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), GenerateRandomOTP())
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, []rune(GenerateRandomPassword(12)), 12)
	assert.Empty(t, GenerateRandomPassword(0))
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("secret", "example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCoordinator, user.Role)
	assert.Regexp(t, regexp.MustCompile(`^[a-z]+\d{1,3}$`), user.Username)
	assert.Equal(t, user.Username+"@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
}

func TestGenerateRandomClient(t *testing.T) {
	c := GenerateRandomClient("example.com")

	assert.Regexp(t, regexp.MustCompile(`^43\d{7}$`), c.NDISNumber)
	assert.NotEmpty(t, c.FirstName)
	assert.NotEmpty(t, c.Address)
	assert.Contains(t, c.InvoiceEmail, "@example.com")
}

func TestGenerateRandomCarer(t *testing.T) {
	c := GenerateRandomCarer("example.com")

	assert.Regexp(t, regexp.MustCompile(`^04\d{8}$`), c.Phone)
	assert.Contains(t, c.Email, "@example.com")
}
