// internal/words/words.go
//
// Provides the word catalog the game cycles through.
//
// Responsibilities:
//   - Parse catalog lines of the form "word,imageRef" (imageRef optional).
//   - Load the catalog from a file or fall back to the embedded default list.
//   - Validate entries: words are non-empty letter strings, stored upper-case.
//   - Cyclic access by index (Entry, Next).
//
// File format:
//   # comment
//   CAT,/images/cat.jpg
//   dog,/images/dog.jpg
//
// Constraints:
//   • A catalog is never empty.
//   • Word identity is case-insensitive; the stored form is upper-case.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/robalobadob/alphasnake/assets"
)

// ErrEmpty is returned when a catalog would have no entries.
var ErrEmpty = errors.New("words: catalog is empty")

// Entry is one catalog word with its opaque image reference.
type Entry struct {
	Word  string `json:"word"`
	Image string `json:"image"`
}

// Catalog is an ordered, non-empty, immutable list of entries.
type Catalog struct {
	entries []Entry
}

// New validates and normalizes entries into a catalog.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		w, err := normalizeWord(e.Word)
		if err != nil {
			return nil, fmt.Errorf("words: entry %d: %w", i, err)
		}
		out[i] = Entry{Word: w, Image: strings.TrimSpace(e.Image)}
	}
	return &Catalog{entries: out}, nil
}

// Parse reads catalog lines from r. Blank lines and "#" comments are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		e, err := ParseLine(s)
		if err != nil {
			return nil, fmt.Errorf("words: line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(entries)
}

// ParseLine splits "word,imageRef" into an Entry.
func ParseLine(s string) (Entry, error) {
	word, image, _ := strings.Cut(s, ",")
	w, err := normalizeWord(word)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Word: w, Image: strings.TrimSpace(image)}, nil
}

// Load reads a catalog file. An empty path selects the embedded defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	lines, err := assets.WordLines()
	if err != nil {
		return nil, err
	}
	return Parse(strings.NewReader(strings.Join(lines, "\n")))
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the entry at i, wrapping in both directions.
func (c *Catalog) Entry(i int) Entry {
	n := len(c.entries)
	return c.entries[((i%n)+n)%n]
}

// Next returns the index after i, wrapping to 0 after the last entry.
func (c *Catalog) Next(i int) int { return (i + 1) % len(c.entries) }

// Entries returns a copy of all entries in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// normalizeWord trims and upper-cases w and checks it is all letters.
func normalizeWord(w string) (string, error) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if w == "" {
		return "", errors.New("empty word")
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%q: non-letter %q", w, r)
		}
	}
	return w, nil
}
