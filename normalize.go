package igapi

import "bytes"

// minQuotedLiteral is the number of digit and decimal-point characters from
// which a numeric literal no longer fits a float64 exactly and is quoted.
const minQuotedLiteral = 15

// NormalizeJSON rewrites numeric literals of 15 or more digit/decimal-point
// characters as JSON strings so they survive decoding without losing
// precision. A literal is rewritten only when it is followed by optional
// whitespace and one of ',', '}' or ']'. String literals, exponent forms and
// every byte around a rewritten literal are left untouched.
func NormalizeJSON(raw []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(raw) + 16)

	inString := false
	for i := 0; i < len(raw); {
		c := raw[i]

		if inString {
			out.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(raw) {
					out.WriteByte(raw[i+1])
					i++
				}
			case '"':
				inString = false
			}
			i++
			continue
		}

		if c == '"' {
			inString = true
			out.WriteByte(c)
			i++
			continue
		}

		if c != '-' && c != '.' && !isDigit(c) {
			out.WriteByte(c)
			i++
			continue
		}

		end, digits, exponent := scanNumber(raw, i)
		if !exponent && digits >= minQuotedLiteral && delimitedAt(raw, end) {
			out.WriteByte('"')
			out.Write(raw[i:end])
			out.WriteByte('"')
		} else {
			out.Write(raw[i:end])
		}
		i = end
	}
	return out.Bytes()
}

// scanNumber returns the end of the numeric token starting at i, the count of
// digit and decimal-point characters before any exponent, and whether an
// exponent follows.
func scanNumber(raw []byte, i int) (end, digits int, exponent bool) {
	j := i
	if raw[j] == '-' {
		j++
	}
	for j < len(raw) && (isDigit(raw[j]) || raw[j] == '.') {
		j++
	}
	digits = j - i
	if raw[i] == '-' {
		digits--
	}
	if j < len(raw) && (raw[j] == 'e' || raw[j] == 'E') {
		exponent = true
		j++
		if j < len(raw) && (raw[j] == '+' || raw[j] == '-') {
			j++
		}
		for j < len(raw) && isDigit(raw[j]) {
			j++
		}
	}
	if j == i {
		j++
	}
	return j, digits, exponent
}

// delimitedAt reports whether raw continues at i with optional whitespace and
// a closing delimiter.
func delimitedAt(raw []byte, i int) bool {
	for ; i < len(raw); i++ {
		switch raw[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ',', '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
