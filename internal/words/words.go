// internal/words/words.go
//
// Dictionary of playable round words.
//
// Responsibilities:
//   - Load the dictionary from a file (WORDS_FILE) or fall back to the list
//     embedded in the assets package.
//   - Answer membership checks for the game engine (Contains).
//   - Pick random words for the word-options endpoint (Random).
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); anything else is skipped.
//   • Lookups are case-insensitive.
//   • A Dictionary is immutable after Load and safe for concurrent use.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/worduel/assets"
)

const wordLen = 5

// Dictionary is a fixed set of 5-letter words.
type Dictionary struct {
	list []string
	set  map[string]struct{}
}

// Load reads the dictionary from path, or from the embedded list when path
// is empty. It fails if no valid word survives filtering.
func Load(path string) (*Dictionary, error) {
	var (
		raw []string
		err error
	)
	if path != "" {
		raw, err = readWordFile(path)
	} else {
		raw, err = assets.WordList()
	}
	if err != nil {
		return nil, err
	}
	d := New(raw)
	if d.Len() == 0 {
		return nil, errors.New("words: dictionary is empty")
	}
	return d, nil
}

// New builds a dictionary from raw words, normalizing to lowercase and
// dropping duplicates and invalid entries.
func New(raw []string) *Dictionary {
	d := &Dictionary{set: make(map[string]struct{}, len(raw))}
	for _, w := range raw {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) != wordLen || !isAlpha(w) {
			continue
		}
		if _, dup := d.set[w]; dup {
			continue
		}
		d.set[w] = struct{}{}
		d.list = append(d.list, w)
	}
	return d
}

// readWordFile loads words from a file, one or more per line.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.Fields(line)...)
	}
	return out, sc.Err()
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Contains reports whether w is in the dictionary.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.set[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.list) }

// Random returns up to n distinct words, uppercased, chosen with
// crypto/rand.
func (d *Dictionary) Random(n int) []string {
	if n > len(d.list) {
		n = len(d.list)
	}
	if n <= 0 {
		return []string{}
	}
	picked := make(map[int]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.list))))
		if err != nil {
			break
		}
		i := int(nBig.Int64())
		if _, dup := picked[i]; dup {
			continue
		}
		picked[i] = struct{}{}
		out = append(out, strings.ToUpper(d.list[i]))
	}
	return out
}
