// Package assets embeds static data shipped with the server binary.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed words.txt
var FS embed.FS

// readWords returns whitespace-separated tokens from an embedded file,
// skipping blank lines and '#' comments. Tokens are lowercased.
func readWords(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		for _, w := range strings.Fields(s) {
			out = append(out, strings.ToLower(w))
		}
	}
	return out, sc.Err()
}

// WordList returns the built-in duel dictionary.
func WordList() ([]string, error) {
	return readWords("words.txt")
}
