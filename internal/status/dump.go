package status

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// borderCutset is trimmed from both ends of every dump line. It covers the
// column separators printed by the mysql client in table mode.
const borderCutset = "| \t\r"

// LoadDump reads a dump file captured with e.g.
//
//	mysql -e 'SHOW GLOBAL STATUS; SHOW GLOBAL VARIABLES' > dump.txt
//
// and returns its key/value pairs.
func LoadDump(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()

	m, err := ParseDump(f)
	if err != nil {
		return Mapping{}, fmt.Errorf("reading dump %s: %w", path, err)
	}
	return m, nil
}

// ParseDump parses lines of the form "| key   value |" or "key value".
// The first whitespace run separates key and value. Digit-only values become
// Int; everything else, including negative numbers and floats, stays String.
// Later duplicates overwrite earlier ones.
func ParseDump(r io.Reader) (Mapping, error) {
	b := newBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, value, ok := parseDumpLine(scanner.Text())
		if !ok {
			continue
		}
		b.set(key, coerceDumpValue(value))
	}
	if err := scanner.Err(); err != nil {
		return Mapping{}, err
	}
	return b.mapping(), nil
}

// parseDumpLine splits a single line into key and value. ok is false for
// blank lines and table rules like "+-----+-----+".
func parseDumpLine(line string) (key, value string, ok bool) {
	line = strings.Trim(line, borderCutset)
	if line == "" || isTableRule(line) {
		return "", "", false
	}

	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, "", true
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(strings.Trim(strings.TrimSpace(line[idx:]), borderCutset))
	return key, value, true
}

func isTableRule(line string) bool {
	return strings.Trim(line, "+-= ") == ""
}

func coerceDumpValue(s string) Value {
	if !isDigits(s) {
		return String(s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Counters that overflow int64 are kept verbatim.
		return String(s)
	}
	return Int(n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
