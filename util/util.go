package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsWordByte reports whether b can continue a javascript identifier.
func IsWordByte(b byte) bool {
	return IsLetterOrUnderscoreOrNumber(b) || b == '$'
}

// IsInteger reports whether s is a non empty run of decimal digits.
func IsInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

// EndsWithWordByte reports whether the last byte of s could fuse with a following word.
func EndsWithWordByte(s string) bool {
	return s != "" && IsWordByte(s[len(s)-1])
}

// ReplaceBytes returns s with every byte listed in from replaced by to.
func ReplaceBytes(s string, from string, to byte) string {
	buf := []byte(s)
	for i := range buf {
		for j := 0; j < len(from); j++ {
			if buf[i] == from[j] {
				buf[i] = to
				break
			}
		}
	}
	return string(buf)
}
