// Package taxid validates and formats CPF numbers, the eleven digit Brazilian
// personal tax identifier. Validation is pure: it never errors and never
// touches the network.
package taxid

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Length is the number of digits in a CPF.
const Length = 11

// IsValid reports whether candidate is a bare eleven digit CPF whose two
// check digits match. Repeated-digit strings are rejected even though their
// check digits work out.
func IsValid(candidate string) bool {
	if len(candidate) != Length {
		return false
	}

	for i := 0; i < Length; i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}

	if repeated(candidate) {
		return false
	}

	d1, d2 := CheckDigits(candidate[:9])
	return int(candidate[9]-'0') == d1 && int(candidate[10]-'0') == d2
}

// CheckDigits computes both check digits for a nine digit base.
// base must contain only ASCII digits; the caller guarantees this.
func CheckDigits(base string) (d1, d2 int) {
	d1 = checkDigit(base)
	d2 = checkDigit(base + string(rune('0'+d1)))
	return d1, d2
}

// checkDigit weights digits from len+1 down to 2 and folds the sum mod 11.
func checkDigit(digits string) int {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weight
		weight--
	}

	r := sum * 10 % 11
	if r == 10 {
		return 0
	}
	return r
}

// Strip removes the punctuation operators type into CPF fields
// ("529.982.247-25" becomes "52998224725"). Any other character is kept so
// that IsValid still rejects it.
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ', '\t':
			return -1
		}
		return r
	}, s)
}

// Format renders a bare CPF as 000.000.000-00. Input that is not eleven
// digits is returned unchanged.
func Format(s string) string {
	s = Strip(s)
	if len(s) != Length || !allDigits(s) {
		return s
	}
	return s[0:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:11]
}

// Generate returns a random valid CPF using crypto/rand.
func Generate() string {
	for {
		buf := make([]byte, 9)
		for i := range buf {
			buf[i] = byte('0' + randIntn(10))
		}
		base := string(buf)
		d1, d2 := CheckDigits(base)
		cpf := base + string(rune('0'+d1)) + string(rune('0'+d2))
		if IsValid(cpf) {
			return cpf
		}
	}
}

func repeated(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
