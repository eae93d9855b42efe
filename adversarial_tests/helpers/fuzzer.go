package helpers

import (
	"math/rand"
	"strings"
	"unicode"
)

// Fuzzer generates hostile inputs for the client's public surface
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a fuzzer with a fixed seed so failures reproduce
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{rnd: rand.New(rand.NewSource(seed))}
}

// FuzzUserAgent generates malicious User-Agent test cases
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		// Empty
		"",

		// Header injection via newlines
		"MyApp/1.0\nX-Evil-Header: injected",
		"MyApp/1.0\rX-Evil-Header: injected",
		"MyApp/1.0\r\nX-Evil-Header: injected",
		"MyApp/1.0\n\nInjected Body",

		// Extremely long
		strings.Repeat("a", 257),
		strings.Repeat("a", 10000),

		// Control characters
		"MyApp\x00/1.0",
		"MyApp\x1B/1.0",
		"MyApp\x7F/1.0",
		"\x00MyApp/1.0",
		"MyApp\t/1.0",

		// Mixed injection attempts
		"MyApp/1.0\r\nContent-Length: 0\r\n\r\nPOST /graphql HTTP/1.1",
		"MyApp/1.0\nAuthorization: Bearer stolen",
	}
}

// FuzzJunctionID generates junction ids that match no device
func (f *Fuzzer) FuzzJunctionID() []string {
	return []string{
		"",
		" ",
		"J1 ",
		" J1",
		"j1",
		"J1\x00",
		"J\u200B1",
		"../J1",
		`J1"}`,
		strings.Repeat("J", 4096),
		f.GenerateRandomString(32, true),
	}
}

// FuzzSetpoints generates out-of-range setpoints for a device maximum
func (f *Fuzzer) FuzzSetpoints(max int) (below, above []int) {
	below = []int{94, 0, -1, -2147483648, 95 - 1 - f.rnd.Intn(1000)}
	above = []int{max + 1, max + 1000, 2147483647, max + 1 + f.rnd.Intn(1000)}
	return below, above
}

// FuzzDays generates day counts outside 1..100
func (f *Fuzzer) FuzzDays() []int {
	return []int{0, -1, 101, 1000, -2147483648, 2147483647, 101 + f.rnd.Intn(1000)}
}

// GenerateRandomString generates a random string of length runes
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const special = "!@#$%^&*()_+-=[]{}|;:',.<>?/`~\"\\ "

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// GenerateControlCharString generates strings with each ASCII control character
func (f *Fuzzer) GenerateControlCharString() []string {
	var results []string
	for i := 0; i < 32; i++ {
		char := rune(i)
		if unicode.IsControl(char) {
			results = append(results, "test"+string(char)+"string")
		}
	}
	results = append(results, "test\x7Fstring")
	return results
}

// GenerateUnicodeAttacks generates strings with various Unicode attack patterns
func (f *Fuzzer) GenerateUnicodeAttacks() []string {
	return []string{
		// Zero-width characters
		"test\u200Bstring",
		"test\u200Cstring",
		"test\u200Dstring",
		"test\uFEFFstring",

		// Direction overrides
		"test\u202Estring",
		"test\u202Dstring",

		// Combining characters
		"test\u0301string",
		"a\u0301\u0302\u0303",

		// Normalization
		"caf\u00E9",
		"cafe\u0301",

		// Homoglyphs
		"g\u043E\u043Egle",

		// Astral plane
		"pass\U0001F525word",
	}
}
