package tts

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// StripMarkdown reduces markdown to speakable text. Code and HTML blocks
// are dropped, links keep their label, images their alt text, and block
// boundaries become sentence breaks.
func StripMarkdown(markdown string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	w := &plainWriter{}
	w.walk(doc, reader.Source())

	return CleanText(w.buf.String())
}

// CleanText normalizes text to NFC and collapses runs of whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

type plainWriter struct {
	buf strings.Builder
	// pending marks that a block ended and a sentence break is owed
	// before more text is written.
	pending bool
}

func (w *plainWriter) write(b []byte) {
	if len(b) == 0 {
		return
	}
	if w.pending && w.buf.Len() > 0 {
		w.breakSentence()
	}
	w.pending = false
	w.buf.Write(b)
}

// breakSentence ends the sentence written so far unless it already ends
// in punctuation.
func (w *plainWriter) breakSentence() {
	s := strings.TrimRightFunc(w.buf.String(), unicode.IsSpace)
	if s == "" {
		return
	}
	if !strings.ContainsRune(".!?:;", rune(s[len(s)-1])) {
		w.buf.WriteByte('.')
	}
	w.buf.WriteByte(' ')
}

func (w *plainWriter) walk(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		w.write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.buf.WriteByte(' ')
		}
		return

	case *ast.String:
		w.write(n.Value)
		return

	case *ast.AutoLink:
		w.write(n.Label(source))
		return

	case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
		w.children(n, source)
		w.pending = true
		return

	case *ast.ThematicBreak:
		w.pending = true
		return
	}

	// links, emphasis, code spans, images and containers contribute
	// their children
	w.children(node, source)
}

func (w *plainWriter) children(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c, source)
	}
}
