package shortener

import (
	"crypto/sha256"
	"strconv"
)

// SaltedInput returns the text hashed for a given attempt: the canonical URL
// for attempt 0, "<canonical>#<attempt>" afterwards.
func SaltedInput(canonical string, attempt int) string {
	if attempt == 0 {
		return canonical
	}

	return canonical + "#" + strconv.Itoa(attempt)
}

// GenerateCode derives a code of cfg.CodeLength() characters from the
// SHA-256 digest of input. Byte i of the digest selects alphabet[b mod |alphabet|].
func GenerateCode(cfg *Config, input string) Code {
	sum := sha256.Sum256([]byte(input))
	n := len(cfg.alphabet)

	code := make([]rune, cfg.codeLength)
	for i := range code {
		code[i] = cfg.alphabet[int(sum[i])%n]
	}

	return Code(code)
}

// ValidCode reports whether code has the configured length and only alphabet characters.
func (c *Config) ValidCode(code Code) bool {
	runes := []rune(string(code))
	if len(runes) != c.codeLength {
		return false
	}

	for _, r := range runes {
		if !c.inAlphabet(r) {
			return false
		}
	}

	return true
}

func (c *Config) inAlphabet(r rune) bool {
	for _, a := range c.alphabet {
		if a == r {
			return true
		}
	}

	return false
}
