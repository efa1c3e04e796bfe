package query

import (
    "strings"
    "unicode"
)

// Normalize collapses free-form text into a canonical lookup key:
// lower-case, letters and digits only, no separators.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
    var b strings.Builder
    b.Grow(len(text))
    for _, r := range strings.ToLower(text) {
        if unicode.IsLetter(r) || unicode.IsDigit(r) {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// HasPrefix reports whether the normalized candidate name starts with the
// normalized query. Both queries against adapter candidates and the merge-stage
// re-check use this test.
func HasPrefix(candidateName, queryText string) bool {
    q := Normalize(queryText)
    if q == "" { return false }
    return strings.HasPrefix(Normalize(candidateName), q)
}
