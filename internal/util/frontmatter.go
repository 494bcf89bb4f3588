package util

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// SplitFrontmatter separates an optional leading YAML frontmatter block
// (delimited by "---" lines) from the document body. When the document does
// not begin with a delimiter the whole input is returned as body. An opening
// delimiter without a closing one is malformed.
func SplitFrontmatter(s string) (frontmatter, body string, has bool, err error) {
	br := bufio.NewReader(strings.NewReader(s))

	first, ferr := br.ReadString('\n')
	if ferr != nil && !errors.Is(ferr, io.EOF) {
		return "", "", false, ferr
	}
	if strings.TrimSpace(strings.TrimRight(first, "\r\n")) != "---" {
		return "", s, false, nil
	}

	var fmLines []string
	foundEnd := false
	for {
		line, lerr := br.ReadString('\n')
		if lerr != nil && !errors.Is(lerr, io.EOF) {
			return "", "", false, lerr
		}
		lineTrim := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(lineTrim) == "---" {
			foundEnd = true
			break
		}
		fmLines = append(fmLines, lineTrim)
		if errors.Is(lerr, io.EOF) {
			break
		}
	}
	if !foundEnd {
		return "", "", false, errors.New("unterminated frontmatter (missing closing ---)")
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return "", "", false, err
	}
	return strings.Join(fmLines, "\n"), strings.TrimLeft(string(rest), "\r\n"), true, nil
}

// StripFrontmatter returns the document body without any leading frontmatter
// block. Malformed frontmatter is returned untouched.
func StripFrontmatter(s string) string {
	_, body, _, err := SplitFrontmatter(s)
	if err != nil {
		return s
	}
	return body
}
