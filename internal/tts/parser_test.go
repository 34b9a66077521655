package tts

import "testing"

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "just words", "just words"},
		{"headings", "# Title\n## Subtitle", "Title. Subtitle"},
		{"list", "- Item 1\n- Item 2", "Item 1. Item 2"},
		{"emphasis", "some **bold** and _italic_ text", "some bold and italic text"},
		{"link", "see [the docs](https://example.com) now", "see the docs now"},
		{"image", "![a cat](cat.png)", "a cat"},
		{"code span", "run `go test` now", "run go test now"},
		{"fenced code", "Intro\n\n```go\nfmt.Println()\n```\n\nOutro", "Intro. Outro"},
		{"inline html", "a <b>bold</b> word", "a bold word"},
		{"existing punctuation", "# Done!\n\nNext", "Done! Next"},
		{"soft break", "line one\nline two", "line one line two"},
		{"blockquote", "> quoted\n\nafter", "quoted. after"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.input); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello   world  ", "hello world"},
		{"a\n\tb", "a b"},
		{"", ""},
		// e followed by a combining acute accent composes to é
		{"cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
