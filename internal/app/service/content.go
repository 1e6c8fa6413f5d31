package service

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const excerptLength = 200

// ugcPolicy is safe for concurrent use once built.
var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips scripts, event handlers and other unsafe markup
// from user supplied HTML.
func SanitizeContent(raw string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(raw))
}

// Excerpt returns the first excerptLength runes of the visible text of an
// HTML fragment, with whitespace collapsed.
func Excerpt(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return truncate(strings.Join(strings.Fields(b.String()), " "), excerptLength)
		case html.StartTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// Slugify builds the URL slug of a blog title.
func Slugify(title string) string {
	return slug.Make(title)
}

// TagList accepts tags as a JSON array or as one comma separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = ParseTags(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*t = ParseTags([]string{single})
	return nil
}

// ParseTags splits every value on commas, trims, drops empties and
// duplicates, keeping first-seen order.
func ParseTags(values []string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
