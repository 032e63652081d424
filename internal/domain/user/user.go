package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const DefaultLanguage = "English"

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

// emailPattern is deliberately loose; addresses are stored as typed.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser is what a repository needs to insert a row.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Language     string
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email}
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// LanguageOrDefault falls back to English for an empty preference.
func LanguageOrDefault(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return DefaultLanguage
	}
	return lang
}

// NameFromEmail is the display name used when the identity provider sends none.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
