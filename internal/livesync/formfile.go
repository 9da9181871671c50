package livesync

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/printstudio/internal/content"
)

// ParseFormFile reads a form written as name=value lines. Blank lines and
// lines starting with # are skipped; "\n" inside a value is a line break, so
// lines fields fit on one line.
func ParseFormFile(r io.Reader) (content.Form, error) {
	form := content.Form{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: expected name=value", lineNo)
		}
		form[name] = strings.ReplaceAll(strings.TrimSpace(value), `\n`, "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return form, nil
}

// WriteFormFile writes form in the format ParseFormFile reads, sorted by
// name.
func WriteFormFile(w io.Writer, form content.Form) error {
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		value := strings.ReplaceAll(form[name], "\r\n", "\n")
		if _, err := fmt.Fprintf(bw, "%s=%s\n", name, strings.ReplaceAll(value, "\n", `\n`)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
