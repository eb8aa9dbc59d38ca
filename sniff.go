package zcsv

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
)

// candidateDelimiters are tried in DetectDialect, in order of preference on
// a tie.
var candidateDelimiters = [...]byte{',', '\t', ';', '|'}

// DetectDialect inspects a sample of CSV data (a prefix of the full input
// is enough; a few lines give the best results) and returns a best-guess
// Dialect. The quote byte is always '"'; only the delimiter varies.
//
// For each candidate delimiter it scores how many unquoted occurrences
// appear per line, favoring whichever delimiter shows up the same number
// of times on every line (a strong signal of a real field separator
// rather than incidental punctuation).
func DetectDialect(sample []byte) Dialect {
	d := DefaultDialect()
	d.Delimiter = detectDelimiter(sample)
	return d
}

func detectDelimiter(sample []byte) byte {
	if len(sample) == 0 {
		return ','
	}
	lines := splitLines(sample)

	best := byte(',')
	bestScore := 0
	for _, delim := range candidateDelimiters {
		counts := make([]int, 0, len(lines))
		for _, line := range lines {
			if len(line) == 0 {
				continue
			}
			counts = append(counts, countUnquoted(line, delim))
		}
		if len(counts) == 0 || counts[0] == 0 {
			continue
		}
		consistent := true
		for i := 1; i < len(counts); i++ {
			if counts[i] != counts[0] {
				consistent = false
				break
			}
		}
		score := counts[0]
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best = delim
			bestScore = score
		}
	}
	return best
}

// countUnquoted counts occurrences of delim in line outside of a quoted
// span, toggling on every '"' byte regardless of doubling. This is a rough
// heuristic for sniffing only; Iterator performs the real RFC 4180 parse.
func countUnquoted(line []byte, delim byte) int {
	count := 0
	inQuotes := false
	for _, b := range line {
		switch {
		case b == '"':
			inQuotes = !inQuotes
		case b == delim && !inQuotes:
			count++
		}
	}
	return count
}

// HasHeader reports whether the sample's first line looks like a header
// row: more of its fields look identifier-like than look like data
// (numbers, dates, email addresses). A second non-empty line must exist,
// but its fields are not scored or compared with the first line's.
func HasHeader(sample []byte, d Dialect) bool {
	lines := splitLines(sample)
	if len(lines) < 2 {
		return false
	}
	first := lines[0]
	var second []byte
	for _, line := range lines[1:] {
		if len(line) != 0 {
			second = line
			break
		}
	}
	if second == nil {
		return false
	}

	firstFields := splitUnquoted(first, d.Delimiter)
	secondFields := splitUnquoted(second, d.Delimiter)
	if len(firstFields) == 0 || len(secondFields) == 0 {
		return false
	}

	headerScore, dataScore := 0, 0
	for _, field := range firstFields {
		s := strings.TrimSpace(string(field))
		if looksLikeHeader(s) {
			headerScore++
		}
		if looksLikeData(s) {
			dataScore++
		}
	}
	return headerScore > dataScore
}

var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),
	regexp.MustCompile(`^[a-zA-Z]+[A-Z][a-zA-Z]*$`),
	regexp.MustCompile(`^[A-Z][a-z]+([ ][A-Z][a-z]+)*$`),
}

func looksLikeHeader(s string) bool {
	if s == "" || looksNumeric(s) {
		return false
	}
	for _, p := range headerPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
}

func looksLikeData(s string) bool {
	if s == "" {
		return false
	}
	if looksNumeric(s) || strings.Contains(s, "@") {
		return true
	}
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	hasDot := false
	for _, ch := range s {
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
			continue
		}
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return len(s) > 0
}

func splitLines(sample []byte) [][]byte {
	return bytes.Split(bytes.ReplaceAll(sample, []byte("\r\n"), []byte("\n")), []byte("\n"))
}

// splitUnquoted is a quote-toggling splitter used only for sniffing
// purposes; Iterator is the authoritative parser.
func splitUnquoted(line []byte, delim byte) [][]byte {
	var fields [][]byte
	start := 0
	inQuotes := false
	for i, b := range line {
		switch {
		case b == '"':
			inQuotes = !inQuotes
		case b == delim && !inQuotes:
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	fields = append(fields, line[start:])
	return fields
}

// HeaderConverter transforms one header field name.
type HeaderConverter func(string) string

// LowercaseHeader converts a header to lowercase.
func LowercaseHeader(s string) string { return strings.ToLower(s) }

// UppercaseHeader converts a header to uppercase.
func UppercaseHeader(s string) string { return strings.ToUpper(s) }

// SnakeCaseHeader converts a header from "Title Case" or "camelCase" to
// snake_case.
func SnakeCaseHeader(s string) string {
	var out strings.Builder
	prevWasSpace := false
	for i, ch := range s {
		if ch == ' ' {
			if out.Len() > 0 && !prevWasSpace {
				out.WriteRune('_')
			}
			prevWasSpace = true
			continue
		}
		if unicode.IsUpper(ch) && i > 0 && !prevWasSpace {
			out.WriteRune('_')
		}
		out.WriteRune(unicode.ToLower(ch))
		prevWasSpace = false
	}
	return out.String()
}

// ColumnSelector restricts which columns of a row a caller wants to keep,
// by name or by index.
type ColumnSelector struct {
	UseCols       []string
	UseColIndexes []int
}

// ShouldInclude reports whether the column at index with the given header
// name should be kept. An empty selector includes everything.
func (c *ColumnSelector) ShouldInclude(name string, index int) bool {
	if len(c.UseCols) == 0 && len(c.UseColIndexes) == 0 {
		return true
	}
	for _, col := range c.UseCols {
		if col == name {
			return true
		}
	}
	for _, idx := range c.UseColIndexes {
		if idx == index {
			return true
		}
	}
	return false
}
