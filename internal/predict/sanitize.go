package predict

import "bytes"

var nonFiniteTokens = [][]byte{
	[]byte("-Infinity"),
	[]byte("Infinity"),
	[]byte("NaN"),
}

// sanitizeNonFinite rewrites the bare NaN and Infinity tokens that Python's
// json module emits into null, leaving string contents untouched.
func sanitizeNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); {
		ch := data[i]
		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			i++
			continue
		}
		if ch == '"' {
			inString = true
			out = append(out, ch)
			i++
			continue
		}
		matched := false
		for _, tok := range nonFiniteTokens {
			if bytes.HasPrefix(data[i:], tok) {
				out = append(out, "null"...)
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, ch)
			i++
		}
	}
	return out
}
