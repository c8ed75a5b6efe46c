package application

import "unicode/utf8"

// MaskName hides the last character of name. Names of zero or one
// character become a single "*".
func MaskName(name string) string {
	if utf8.RuneCountInString(name) <= 1 {
		return "*"
	}
	_, size := utf8.DecodeLastRuneInString(name)
	return name[:len(name)-size] + "*"
}
