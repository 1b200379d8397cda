package imagegen

import "strings"

const (
	nameTokens = 6
	nameSuffix = "image.png"
)

// DeriveName builds a deterministic artifact name from the first six
// whitespace separated words of prompt. Each word keeps only ASCII letters,
// digits and hyphens; empty words are dropped.
func DeriveName(prompt string) string {
	fields := strings.Fields(prompt)
	if len(fields) > nameTokens {
		fields = fields[:nameTokens]
	}
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if w := sanitize(f); w != "" {
			parts = append(parts, w)
		}
	}
	parts = append(parts, nameSuffix)
	return strings.Join(parts, "_")
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return -1
	}, s)
}
