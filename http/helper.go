package http

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

func atoi(s string) (int, error) {
	if s == "" {
		return 0, errors.New("invalid number")
	}

	var n int
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, errors.New("invalid number")
		}
		if n > (math.MaxInt-int(c-'0'))/10 {
			return 0, errors.New("number out of range")
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// appendInt writes a non-negative integer without going through fmt.
func appendInt(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}

	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = '0' + byte(n%10)
		n /= 10
	}

	return append(buf, digits[i:]...)
}

func hexToByte(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 255 // Invalid hex
}

// URLDecode replaces '+' with a space and then resolves %HH escapes.
func URLDecode(s string) (string, error) {
	s = strings.ReplaceAll(s, "+", " ")
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			buf = append(buf, s[i])
			continue
		}

		if i+2 >= len(s) {
			return "", errors.Wrapf(ErrInvalidEscape, "%q", s[i:])
		}

		hi, lo := hexToByte(s[i+1]), hexToByte(s[i+2])
		if hi == 255 || lo == 255 {
			return "", errors.Wrapf(ErrInvalidEscape, "%q", s[i:i+3])
		}

		buf = append(buf, hi<<4|lo)
		i += 2
	}

	return string(buf), nil
}

// ParseQuery parses '&' separated key=value pairs, decoding both sides.
// A pair without '=' is stored with an empty value.
func ParseQuery(s string) (map[string]string, error) {
	result := make(map[string]string)

	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := URLDecode(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := URLDecode(rawValue)
		if err != nil {
			return nil, err
		}

		result[key] = value
	}

	return result, nil
}
