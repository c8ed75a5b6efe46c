package entity

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// Login id and name constraints.
const (
	MinLoginIDLength = 4
	MaxLoginIDLength = 20
	MinNameLength    = 2
	MaxNameLength    = 20
	MaxEmailLength   = 255
)

var (
	loginIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// now is swapped in tests that need a fixed "today".
var now = time.Now

// User is the aggregate root for the user domain.
// Instances exist only through NewUser or RestoreUser, both of which validate
// every field. The password is always held in encoded form.
type User struct {
	id        int64
	loginID   string
	password  Password
	name      string
	birthDate time.Time
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser validates the identity fields and builds a User that has not been
// persisted yet. encodedPassword must already be the encoder's output.
func NewUser(loginID, encodedPassword, name string, birthDate time.Time, email string) (*User, error) {
	if err := validateUser(loginID, name, birthDate, email); err != nil {
		return nil, err
	}
	return &User{
		loginID:   loginID,
		password:  PasswordFromEncoded(encodedPassword),
		name:      name,
		birthDate: dateOf(birthDate),
		email:     email,
	}, nil
}

// RestoreUser rebuilds a persisted User. It runs the same validation as
// NewUser so stored rows that violate the rules surface as errors.
func RestoreUser(id int64, loginID, encodedPassword, name string, birthDate time.Time, email string, createdAt, updatedAt time.Time) (*User, error) {
	u, err := NewUser(loginID, encodedPassword, name, birthDate, email)
	if err != nil {
		return nil, err
	}
	u.id = id
	u.createdAt = createdAt
	u.updatedAt = updatedAt
	return u, nil
}

func validateUser(loginID, name string, birthDate time.Time, email string) error {
	if n := utf8.RuneCountInString(loginID); n < MinLoginIDLength || n > MaxLoginIDLength {
		return ErrInvalidLoginIDLength
	}
	if !loginIDPattern.MatchString(loginID) {
		return ErrInvalidLoginIDFormat
	}
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return ErrInvalidNameFormat
	}
	if birthDate.IsZero() || dateOf(birthDate).After(dateOf(now())) {
		return ErrInvalidBirthDate
	}
	return nil
}

// dateOf drops the clock part and pins the calendar date to UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ChangePassword replaces the encoded password. Policy validation and
// encoding are the caller's job.
func (u *User) ChangePassword(newEncodedPassword string) {
	u.password = PasswordFromEncoded(newEncodedPassword)
}

// MarkPersisted records the identity and timestamps assigned by the store.
// The id is only taken on the first call.
func (u *User) MarkPersisted(id int64, createdAt, updatedAt time.Time) {
	if u.id == 0 {
		u.id = id
	}
	if u.createdAt.IsZero() {
		u.createdAt = createdAt
	}
	u.updatedAt = updatedAt
}

func (u *User) ID() int64            { return u.id }
func (u *User) LoginID() string      { return u.loginID }
func (u *User) Password() Password   { return u.password }
func (u *User) Name() string         { return u.name }
func (u *User) BirthDate() time.Time { return u.birthDate }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// IsNew reports whether the user has not been saved yet.
func (u *User) IsNew() bool { return u.id == 0 }
