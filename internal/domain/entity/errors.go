package entity

import "fmt"

// ErrorClass tells the boundary layer how to classify a domain failure.
type ErrorClass int

const (
	ClassBadInput ErrorClass = iota + 1
	ClassConflict
	ClassUnauthorized
)

func (c ErrorClass) String() string {
	switch c {
	case ClassBadInput:
		return "bad_input"
	case ClassConflict:
		return "conflict"
	case ClassUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ErrorKind identifies a user domain failure.
type ErrorKind string

const (
	KindInvalidLoginIDLength      ErrorKind = "INVALID_LOGIN_ID_LENGTH"
	KindInvalidLoginIDFormat      ErrorKind = "INVALID_LOGIN_ID_FORMAT"
	KindInvalidEmailFormat        ErrorKind = "INVALID_EMAIL_FORMAT"
	KindInvalidNameFormat         ErrorKind = "INVALID_NAME_FORMAT"
	KindInvalidBirthDate          ErrorKind = "INVALID_BIRTH_DATE"
	KindInvalidPasswordLength     ErrorKind = "INVALID_PASSWORD_LENGTH"
	KindInvalidPasswordFormat     ErrorKind = "INVALID_PASSWORD_FORMAT"
	KindPasswordContainsBirthDate ErrorKind = "PASSWORD_CONTAINS_BIRTH_DATE"
	KindDuplicateLoginID          ErrorKind = "DUPLICATE_LOGIN_ID"
	KindAuthenticationFailed      ErrorKind = "AUTHENTICATION_FAILED"
	KindInvalidCurrentPassword    ErrorKind = "INVALID_CURRENT_PASSWORD"
	KindSamePassword              ErrorKind = "SAME_PASSWORD"
)

// Error is a user domain failure with a stable code, a fixed message and a class.
// errors.Is matches on Kind, so an Error with a customized message still
// matches its sentinel.
type Error struct {
	Kind    ErrorKind
	Code    string
	Class   ErrorClass
	Message string

	// LoginID is set for DuplicateLoginId failures for diagnostics.
	LoginID string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is reports whether target is a domain Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, code string, class ErrorClass, msg string) *Error {
	return &Error{Kind: kind, Code: code, Class: class, Message: msg}
}

var (
	ErrInvalidLoginIDFormat      = newError(KindInvalidLoginIDFormat, "USER_001", ClassBadInput, "login id may contain only letters and digits")
	ErrInvalidEmailFormat        = newError(KindInvalidEmailFormat, "USER_002", ClassBadInput, "email format is invalid")
	ErrInvalidNameFormat         = newError(KindInvalidNameFormat, "USER_003", ClassBadInput, "name must be 2 to 20 characters")
	ErrInvalidBirthDate          = newError(KindInvalidBirthDate, "USER_004", ClassBadInput, "birth date is invalid")
	ErrInvalidPasswordLength     = newError(KindInvalidPasswordLength, "USER_005", ClassBadInput, "password must be 8 to 16 characters")
	ErrInvalidPasswordFormat     = newError(KindInvalidPasswordFormat, "USER_006", ClassBadInput, "password may contain only letters, digits and special characters")
	ErrPasswordContainsBirthDate = newError(KindPasswordContainsBirthDate, "USER_007", ClassBadInput, "password must not contain the birth date")
	ErrDuplicateLoginID          = newError(KindDuplicateLoginID, "USER_008", ClassConflict, "login id is already in use")
	ErrInvalidLoginIDLength      = newError(KindInvalidLoginIDLength, "USER_009", ClassBadInput, "login id must be 4 to 20 characters")
	ErrAuthenticationFailed      = newError(KindAuthenticationFailed, "USER_010", ClassUnauthorized, "invalid login id or password")
	ErrInvalidCurrentPassword    = newError(KindInvalidCurrentPassword, "USER_011", ClassBadInput, "current password does not match")
	ErrSamePassword              = newError(KindSamePassword, "USER_012", ClassBadInput, "new password must differ from the current password")
)

// DuplicateLoginID returns a DuplicateLoginId failure for loginID.
// When exposeLoginID is false the message is the generic one.
func DuplicateLoginID(loginID string, exposeLoginID bool) *Error {
	e := *ErrDuplicateLoginID
	e.LoginID = loginID
	if exposeLoginID {
		e.Message = fmt.Sprintf("login id is already in use: %s", loginID)
	}
	return &e
}
