// Package dast builds DatoCMS structured text ("dast") documents from the
// HTML fragments the recipe extractor produces.
package dast

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	TypeRoot      = "root"
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeList      = "list"
	TypeListItem  = "listItem"
	TypeSpan      = "span"

	StyleBulleted = "bulleted"
	StyleNumbered = "numbered"

	MarkStrong   = "strong"
	MarkEmphasis = "emphasis"
)

type Node struct {
	Type     string   `json:"type"`
	Level    int      `json:"level,omitempty"`
	Style    string   `json:"style,omitempty"`
	Value    string   `json:"value,omitempty"`
	Marks    []string `json:"marks,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// Document is the value of a structured text field.
type Document struct {
	Schema string `json:"schema"`
	Root   *Node  `json:"document"`
}

// FromHTML parses an HTML fragment and converts it into a document. Parsing
// is best-effort: whatever the model produced is recovered by the HTML5
// parsing rules, scripts and styles are dropped, and loose top-level text is
// wrapped in paragraphs. Top-level nodes are limited to headings, paragraphs
// and lists.
func FromHTML(fragment string) (*Document, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}

	for _, n := range nodes {
		body.AppendChild(n)
	}

	return &Document{
		Schema: "dast",
		Root:   &Node{Type: TypeRoot, Children: convertBlocks(body)},
	}, nil
}

// FromLines builds a document holding a single list with one item per line.
func FromLines(style string, lines []string) *Document {
	list := &Node{Type: TypeList, Style: style}
	for _, line := range lines {
		list.Children = append(list.Children, &Node{
			Type: TypeListItem,
			Children: []*Node{{
				Type:     TypeParagraph,
				Children: []*Node{{Type: TypeSpan, Value: line}},
			}},
		})
	}

	return &Document{
		Schema: "dast",
		Root:   &Node{Type: TypeRoot, Children: []*Node{list}},
	}
}

// convertBlocks converts the children of parent into block nodes. Runs of
// inline content are collected into a paragraph.
func convertBlocks(parent *html.Node) []*Node {
	var blocks []*Node
	var pending []*Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		blocks = append(blocks, &Node{Type: TypeParagraph, Children: pending})
		pending = nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				pending = append(pending, &Node{Type: TypeSpan, Value: collapseSpace(c.Data)})
			}
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Iframe, atom.Template:
				// model output occasionally smuggles these in
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				flush()
				blocks = append(blocks, &Node{
					Type:     TypeHeading,
					Level:    headingLevel(c.DataAtom),
					Children: convertInline(c, nil),
				})
			case atom.P:
				flush()
				if children := convertInline(c, nil); len(children) > 0 {
					blocks = append(blocks, &Node{Type: TypeParagraph, Children: children})
				}
			case atom.Ul:
				flush()
				blocks = append(blocks, convertList(c, StyleBulleted))
			case atom.Ol:
				flush()
				blocks = append(blocks, convertList(c, StyleNumbered))
			case atom.Strong, atom.B:
				pending = append(pending, convertInline(c, []string{MarkStrong})...)
			case atom.Em, atom.I:
				pending = append(pending, convertInline(c, []string{MarkEmphasis})...)
			case atom.Span, atom.A, atom.Br:
				pending = append(pending, convertInline(c, nil)...)
			default:
				flush()
				blocks = append(blocks, convertBlocks(c)...)
			}
		}
	}
	flush()

	return blocks
}

func convertList(n *html.Node, style string) *Node {
	list := &Node{Type: TypeList, Style: style}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		blocks := convertBlocks(c)
		if len(blocks) == 0 {
			continue
		}
		list.Children = append(list.Children, &Node{Type: TypeListItem, Children: blocks})
	}

	return list
}

func convertInline(parent *html.Node, marks []string) []*Node {
	var spans []*Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			span := &Node{Type: TypeSpan, Value: collapseSpace(c.Data)}
			if len(marks) > 0 {
				span.Marks = append([]string{}, marks...)
			}
			spans = append(spans, span)
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
			case atom.Strong, atom.B:
				spans = append(spans, convertInline(c, appendMark(marks, MarkStrong))...)
			case atom.Em, atom.I:
				spans = append(spans, convertInline(c, appendMark(marks, MarkEmphasis))...)
			default:
				spans = append(spans, convertInline(c, marks)...)
			}
		}
	}

	return spans
}

func appendMark(marks []string, mark string) []string {
	for _, m := range marks {
		if m == mark {
			return marks
		}
	}
	out := make([]string, 0, len(marks)+1)
	out = append(out, marks...)

	return append(out, mark)
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	default:
		return 6
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}
