package source

import (
    "strings"
)

// Pick selects one candidate name in two passes:
//  1. strict: first whose name, case-insensitively, begins with the query text
//  2. relaxed: first candidate in native order, no name requirement
//
// Returns the index into names, or -1 when names is empty.
func Pick(queryText string, names []string) int {
    if len(names) == 0 { return -1 }
    q := strings.ToLower(strings.TrimSpace(queryText))
    if q != "" {
        for i, n := range names {
            if strings.HasPrefix(strings.ToLower(n), q) {
                return i
            }
        }
    }
    return 0
}
