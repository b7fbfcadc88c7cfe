// Package plaintext turns formatted input into prose suitable for reading
// aloud.
package plaintext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Options controls what FromMarkdownWith keeps.
type Options struct {
	// IncludeCode keeps the contents of fenced and indented code blocks.
	IncludeCode bool
}

var md = goldmark.New()

// FromMarkdown strips markdown formatting from src. Code blocks, HTML and
// link targets are dropped; link and image text is kept.
func FromMarkdown(src string) string {
	return FromMarkdownWith(src, Options{})
}

// FromMarkdownWith is FromMarkdown with options.
func FromMarkdownWith(src string, opts Options) string {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var b bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering && opts.IncludeCode {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
				b.WriteString("\n\n")
			}
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if !entering {
				break
			}
			b.Write(n.Segment.Value(source))
			switch {
			case n.HardLineBreak():
				b.WriteByte('\n')
			case n.SoftLineBreak():
				b.WriteByte(' ')
			}

		case *ast.String:
			if entering {
				b.Write(n.Value)
			}

		case *ast.AutoLink:
			if entering {
				b.Write(n.Label(source))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.Heading, *ast.TextBlock, *ast.ThematicBreak:
			if !entering {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return tidy(b.String())
}

// tidy trims every line and collapses runs of blank lines.
func tidy(s string) string {
	var out []string
	blank := true
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
