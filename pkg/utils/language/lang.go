// package language wraps x/text/language for subtitle track selection.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Tag language.Tag

// Parse parses a BCP 47 tag. An empty string yields English.
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tag(language.English), nil
	}
	t, err := language.Parse(s)
	if err != nil {
		return Tag(language.Und), fmt.Errorf("language: parse %q: %w", s, err)
	}
	return Tag(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(language.Tag(t).String()), nil
}

// Family returns the base language subtag, e.g. "en" for "en-GB".
func (t Tag) Family() string {
	base, _ := language.Tag(t).Base()
	return base.String()
}

// SubtitlePattern returns a yt-dlp --sub-langs pattern matching every track of
// the tag's language family, regional and auto-translated variants included.
func (t Tag) SubtitlePattern() string {
	return t.Family() + ".*"
}
