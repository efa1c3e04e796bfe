package query

import "strings"

// Kind tells which dispatch path an incoming line takes.
type Kind int

const (
    KindIgnore Kind = iota
    KindHelp
    KindSingle
    KindBroadcast
)

// Query is the parsed form of one incoming chat line.
type Query struct {
    Kind    Kind
    Command string // single-source command word, without the leading '!'
    Text    string // free-text query part
    Key     string // normalized lookup key for Text
}

// Parse classifies a chat line. Priority: an explicit "!word args" form first;
// otherwise a line addressed to botName is a broadcast query; everything else
// is ignored. Command words and the bot name match case-insensitively.
func Parse(line, botName string, commands map[string]bool) Query {
    line = strings.TrimSpace(line)
    if line == "" { return Query{Kind: KindIgnore} }

    if strings.HasPrefix(line, "!") {
        word, rest, _ := strings.Cut(line[1:], " ")
        word = strings.ToLower(strings.TrimSpace(word))
        rest = strings.TrimSpace(rest)
        if word == "help" {
            return Query{Kind: KindHelp}
        }
        if commands[word] && rest != "" {
            return Query{Kind: KindSingle, Command: word, Text: rest, Key: Normalize(rest)}
        }
        return Query{Kind: KindIgnore}
    }

    // "<botname> <text>" or "<botname>: <text>"
    first, rest, ok := strings.Cut(line, " ")
    if !ok { return Query{Kind: KindIgnore} }
    first = strings.TrimRight(first, ":,")
    if !strings.EqualFold(first, botName) { return Query{Kind: KindIgnore} }
    rest = strings.TrimSpace(rest)
    if rest == "" { return Query{Kind: KindIgnore} }
    return Query{Kind: KindBroadcast, Text: rest, Key: Normalize(rest)}
}
