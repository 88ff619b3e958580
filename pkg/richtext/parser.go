package richtext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser turns editor markup (HTML produced by the rich-text surface) into
// plain text for search, counts and previews.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Hr: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Template: true,
}

// Parse returns the text content with one line per block element.
func (p *Parser) Parse(markup string) (string, error) {
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range nodes {
		p.walkNode(n, &sb)
	}
	return normalize(sb.String()), nil
}

func (p *Parser) walkNode(node *html.Node, sb *strings.Builder) {
	switch node.Type {
	case html.TextNode:
		sb.WriteString(node.Data)
		return
	case html.ElementNode:
		if skippedElements[node.DataAtom] {
			return
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		p.walkNode(child, sb)
	}

	if node.Type == html.ElementNode && blockElements[node.DataAtom] {
		sb.WriteString("\n")
	}
}

// normalize collapses runs of whitespace inside lines and drops empty lines.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, strings.Join(fields, " "))
		}
	}
	return strings.Join(out, "\n")
}

// PlainText is the convenience form of Parse. Unparseable markup is returned as is.
func PlainText(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return normalize(markup)
	}
	text, err := NewParser().Parse(markup)
	if err != nil {
		return markup
	}
	return text
}

func WordCount(markup string) int {
	return len(strings.Fields(PlainText(markup)))
}

func CharCount(markup string) int {
	return utf8.RuneCountInString(PlainText(markup))
}
