package service

// PasswordEncoder is the one-way hashing capability used by the user services.
// Implementations decide match semantics (salted hash comparison and so on).
type PasswordEncoder interface {
	Encode(raw string) (string, error)
	Matches(raw, encoded string) bool
}
