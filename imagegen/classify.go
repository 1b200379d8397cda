package imagegen

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

const (
	// Signature is the message the primary backend returns to accounts
	// whose tier does not include image generation.
	Signature = "Imagen API is only accessible to billed users at this time."

	// FallbackThreshold is the minimum similarity to Signature for a
	// failure to be routed to the secondary backend.
	FallbackThreshold = 0.8
)

// ClassifiedFailure is the outcome of classifying a backend failure.
type ClassifiedFailure struct {
	RawMessage       string  `json:"raw_message"`
	Similarity       float64 `json:"similarity"`
	Reason           Reason  `json:"reason,omitempty"`
	FallbackEligible bool    `json:"is_fallback_eligible"`
}

// Classify decides whether err may be recovered by the secondary backend.
// A BackendError with a tier or quota reason is eligible outright; any other
// failure is eligible only when its message is similar enough to Signature.
func Classify(err error) ClassifiedFailure {
	msg := ExtractMessage(err)
	cf := ClassifiedFailure{
		RawMessage: msg,
		// Argument order matters: the thresholds are calibrated for (msg, Signature).
		Similarity: Similarity(msg, Signature),
	}
	var be *BackendError
	if errors.As(err, &be) {
		cf.Reason = be.Reason
	}
	switch cf.Reason {
	case ReasonTierRestricted, ReasonQuotaExceeded:
		cf.FallbackEligible = true
	default:
		cf.FallbackEligible = cf.Similarity >= FallbackThreshold
	}
	return cf
}

// ExtractMessage returns the human readable message of a backend failure.
// Typed client errors yield their message field. Otherwise a structured body
// embedded after a leading status (`403 PERMISSION_DENIED. {"error": ...}`)
// is parsed for error.message. On any parse failure the raw text is returned.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}

	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	var ge genai.APIError
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	var oe *openai.Error
	if errors.As(err, &oe) && oe.Message != "" {
		return oe.Message
	}

	return messageFromText(err.Error())
}

var pythonKeywords = map[string]string{"True": "true", "False": "false", "None": "null"}

// pythonToJSON rewrites a Python dict repr into JSON. Single-quoted strings
// become double-quoted, and keywords are replaced only outside strings.
func pythonToJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			i = copyQuoted(&b, s, i, c)
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			word := s[i:j]
			if v, ok := pythonKeywords[word]; ok {
				word = v
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// copyQuoted writes the string literal starting at s[i] as a JSON string and
// returns the index after its closing quote.
func copyQuoted(b *strings.Builder, s string, i int, quote byte) int {
	b.WriteByte('"')
	for i++; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			if s[i] == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		case c == quote:
			b.WriteByte('"')
			return i + 1
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func messageFromText(raw string) string {
	var candidates []string
	if _, rest, ok := strings.Cut(raw, ". "); ok {
		candidates = append(candidates, rest)
	}
	if i := strings.IndexByte(raw, '{'); i >= 0 {
		candidates = append(candidates, raw[i:])
	}
	for _, c := range candidates {
		if msg, ok := parseErrorBody(c); ok {
			return msg
		}
		if msg, ok := parseErrorBody(pythonToJSON(c)); ok {
			return msg
		}
	}
	return raw
}

func parseErrorBody(s string) (string, bool) {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &body); err != nil {
		return "", false
	}
	if body.Error.Message == "" {
		return "", false
	}
	return body.Error.Message, true
}
