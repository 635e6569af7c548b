package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Line is a parsed shell input: positional arguments, --flag=value pairs
// and -flag switches.
type Line struct {
	Args     []string
	Flags    map[string]string
	Switches map[string]bool
}

// ParseLine splits a raw input line into arguments and flags. Tokens are
// separated by whitespace; single and double quotes group tokens. A token
// starting with "--" is a value flag ("--res=30"), one starting with "-"
// a boolean switch ("-grid"), everything else a positional argument.
func ParseLine(raw string) (*Line, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	line := &Line{
		Flags:    make(map[string]string),
		Switches: make(map[string]bool),
	}
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, "--"):
			name, value, found := strings.Cut(token[2:], "=")
			if name == "" {
				return nil, fmt.Errorf("malformed flag %q", token)
			}
			if !found {
				value = "1"
			}
			line.Flags[name] = value
		case strings.HasPrefix(token, "-") && len(token) > 1 && !isNumeric(token):
			line.Switches[token[1:]] = true
		default:
			line.Args = append(line.Args, token)
		}
	}
	return line, nil
}

func tokenize(raw string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote rune

	for _, r := range raw {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

func isNumeric(token string) bool {
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

// Flag returns the value of a --flag, or def when absent.
func (l *Line) Flag(name, def string) string {
	if v, ok := l.Flags[name]; ok {
		return v
	}
	return def
}

// IntFlag parses a --flag as int, falling back to def when absent.
func (l *Line) IntFlag(name string, def int) (int, error) {
	v, ok := l.Flags[name]
	if !ok {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("flag --%s: %q is not an integer", name, v)
	}
	return parsed, nil
}

// FloatFlag parses a --flag as float, falling back to def when absent.
func (l *Line) FloatFlag(name string, def float64) (float64, error) {
	v, ok := l.Flags[name]
	if !ok {
		return def, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("flag --%s: %q is not a number", name, v)
	}
	return parsed, nil
}

// Switch reports whether a -flag switch was given.
func (l *Line) Switch(name string) bool {
	return l.Switches[name]
}

// IsDate reports whether s is an ISO calendar date.
func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// TypeEval coerces a raw config value string into its natural type:
// none, bool, int, float, a comma list in brackets, or the string itself.
func TypeEval(s string) any {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch lower {
	case "none", "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return []any{}
		}
		parts := strings.Split(inner, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = TypeEval(p)
		}
		return out
	}

	return s
}
