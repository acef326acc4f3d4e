package component

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// letters is the 32-symbol alphabet used for component suffixes.
const letters = "abcdefghijklmnopqrstuvwxyz234567"

var (
	// ErrNegative is returned by Letterer for negative numbers.
	ErrNegative = errors.New("number must be 0 or greater")

	// ErrInvalidLetters is returned by Unletterer for characters outside the alphabet.
	ErrInvalidLetters = errors.New("invalid letters")
)

var capsChunk = regexp.MustCompile(`[A-Z]+[a-z]*`)

// CapsToHyphens turns "SpaceShip" into "space-ship".
func CapsToHyphens(name string) string {
	chunks := capsChunk.FindAllString(name, -1)
	for i, c := range chunks {
		chunks[i] = strings.ToLower(c)
	}
	return strings.Join(chunks, "-")
}

// Letterer encodes num as a short base-32 string: 0 is "a", 31 is "7",
// 32 is "aa" and 1056 is "aaa".
func Letterer(num int) (string, error) {
	if num < 0 {
		return "", ErrNegative
	}
	out := []byte{letters[num%32]}
	for num >= 32 {
		num = num/32 - 1
		out = append(out, letters[num%32])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// Unletterer decodes a string produced by Letterer. Case is ignored, and
// the digits 1 and 0 are read as l and o.
func Unletterer(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidLetters)
	}
	value := 0
	for _, r := range strings.ToLower(s) {
		switch r {
		case '1':
			r = 'l'
		case '0':
			r = 'o'
		}
		digit := strings.IndexRune(letters, r)
		if digit < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLetters, r)
		}
		value = value*32 + digit + 1
	}
	return value - 1, nil
}
