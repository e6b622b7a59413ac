package normalization

import (
	"strings"
	"unicode"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// Disease lower-cases, trims and collapses inner whitespace so that
// "  Breast   Cancer" and "breast cancer" share one key.
func Disease(input string) string {
	return strings.Join(strings.Fields(ParseInputString(input)), " ")
}

// Diseases normalizes a list, dropping empties and repeats while keeping first-seen order.
func Diseases(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		d := Disease(in)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// DiseaseEntries normalizes a list, dropping empties but keeping repeats.
func DiseaseEntries(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if d := Disease(in); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// CompanyKey strips everything but letters and digits: "Eli-Lilly & Co." -> "elilillyco".
func CompanyKey(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug turns a normalized disease into a file-name fragment: "back pain" -> "back_pain".
func Slug(input string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range Disease(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
