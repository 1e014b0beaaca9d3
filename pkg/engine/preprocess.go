package engine

import "strings"

// preprocessSource rewrites script source into something zygomys reads:
//
//   - :name becomes the string "__kw_name". Keywords stay out of the global
//     namespace, so a keyword never shadows a user variable.
//   - a-b, where a hyphen joins two identifier characters, becomes a_b.
//     zygomys would read the hyphen as subtraction.
//   - ; and ;; line comments become //.
//
// String literals, in double quotes or backticks, are copied untouched, and
// so is the := operator.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"':
			i = copyLiteral(&out, source, i, '"', true)

		case c == '`':
			i = copyLiteral(&out, source, i, '`', false)

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = len(source) - i
			}
			out.WriteString("//")
			out.WriteString(source[i : i+end])
			i += end

		case c == ':' && i+1 < len(source) && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKeywordChar(source[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(source[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(source) &&
			isIdentChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyLiteral writes the literal opened at src[start] up to and including
// its closing quote and returns the index after it. An unterminated literal
// runs to the end of src.
func copyLiteral(out *strings.Builder, src string, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(src) && src[i] != quote {
		if escapes && src[i] == '\\' && i+1 < len(src) {
			i++
		}
		i++
	}
	if i < len(src) {
		i++
	}
	out.WriteString(src[start:i])
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isKeywordChar(c byte) bool { return isIdentChar(c) || c == '-' }
