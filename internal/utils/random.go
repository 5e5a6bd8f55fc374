package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"Olivia", "Noah", "Charlotte", "Oliver", "Amelia", "Jack", "Isla", "William",
	"Mia", "Henry", "Ava", "Leo", "Grace", "Lucas", "Chloe", "Thomas",
	"Ruby", "James", "Zoe", "Ethan", "Harper", "Mason", "Sophie", "Liam",
}

var lastNames = []string{
	"Smith", "Jones", "Williams", "Brown", "Wilson", "Taylor", "Nguyen", "Johnson",
	"Martin", "White", "Anderson", "Walker", "Thompson", "Kelly", "Harris", "Lee",
	"Ryan", "Robinson", "King", "Campbell",
}

var streets = []string{
	"George St", "Pitt St", "Parramatta Rd", "Victoria Rd", "Church St", "King St",
	"Oxford St", "Military Rd", "Pacific Hwy", "Crown St",
}

var suburbs = []string{
	"Parramatta NSW 2150", "Newtown NSW 2042", "Chatswood NSW 2067", "Penrith NSW 2750",
	"Bondi NSW 2026", "Liverpool NSW 2170", "Hornsby NSW 2077", "Manly NSW 2095",
}

func pick(s []string) string {
	return s[rand.Intn(len(s))]
}

func GenerateRandomName() (string, string) {
	return pick(firstNames), pick(lastNames)
}

var digits = "0123456789"

func randomDigits(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}
	return b.String()
}

func GenerateUsernameFromName(firstName, lastName string) string {
	return strings.ToLower(firstName[:1]+lastName) + randomDigits(rand.Intn(3)+1)
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	first, last := GenerateRandomName()
	username := GenerateUsernameFromName(first, last)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     first + " " + last,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleCoordinator,
	}

	return user, nil
}

func GenerateRandomCarer(emailDomainName string) *domain.Carer {
	first, last := GenerateRandomName()
	return &domain.Carer{
		FirstName: first,
		LastName:  last,
		Email:     GenerateUsernameFromName(first, last) + "@" + emailDomainName,
		Phone:     "04" + randomDigits(8),
	}
}

// GenerateRandomNDISNumber returns a 9 digit participant number starting
// with 43, the prefix NDIS numbers are issued under.
func GenerateRandomNDISNumber() string {
	return "43" + randomDigits(7)
}

func GenerateRandomClient(emailDomainName string) *domain.Client {
	first, last := GenerateRandomName()
	return &domain.Client{
		FirstName:    first,
		LastName:     last,
		NDISNumber:   GenerateRandomNDISNumber(),
		Address:      fmt.Sprintf("%d %s, %s", rand.Intn(200)+1, pick(streets), pick(suburbs)),
		InvoiceEmail: "plan." + GenerateUsernameFromName(first, last) + "@" + emailDomainName,
	}
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}
