package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		notWant string
	}{
		{`<p>hello</p>`, `<p>hello</p>`, ""},
		{`<p>x</p><script>alert(1)</script>`, `<p>x</p>`, "script"},
		{`<img src="a.png" onerror="steal()">`, "", "onerror"},
		{`<a href="javascript:alert(1)">go</a>`, "", "javascript:"},
	}
	for _, tt := range tests {
		got := SanitizeContent(tt.in)
		if tt.want != "" && got != tt.want {
			t.Errorf("SanitizeContent(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.notWant != "" && strings.Contains(got, tt.notWant) {
			t.Errorf("SanitizeContent(%q) = %q still contains %q", tt.in, got, tt.notWant)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("<h1>Title</h1><p>Body\n  text</p><style>p{}</style><script>x()</script>"); got != "Title Body text" {
		t.Errorf("Excerpt = %q", got)
	}

	long := "<p>" + strings.Repeat("é", 250) + "</p>"
	got := Excerpt(long)
	if utf8.RuneCountInString(got) != excerptLength+1 || !strings.HasSuffix(got, "…") {
		t.Errorf("long excerpt has %d runes: %q", utf8.RuneCountInString(got), got)
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("Hello, World! Go 1.24"); got != "hello-world-go-1-24" {
		t.Errorf("Slugify = %q", got)
	}
}

func TestTagListUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`["go","web"]`, "[go web]"},
		{`"go, web ,,go"`, "[go web]"},
		{`[]`, "[]"},
		{`"  "`, "[]"},
		{`["a,b","c"]`, "[a b c]"},
	}
	for _, tt := range tests {
		var tags TagList
		if err := json.Unmarshal([]byte(tt.in), &tags); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if got := fmt.Sprint([]string(tags)); got != tt.want {
			t.Errorf("%s => %s, want %s", tt.in, got, tt.want)
		}
	}

	var tags TagList
	if err := json.Unmarshal([]byte(`42`), &tags); err == nil {
		t.Error("number accepted as tags")
	}
}
