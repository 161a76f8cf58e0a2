package editor

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders the document as an HTML fragment. Consecutive list items are
// grouped into one list and consecutive code lines into one pre element. An
// empty document renders as the empty string.
func (d *Document) HTML() string {
	if d.Empty() {
		return ""
	}

	var sb strings.Builder
	for i := 0; i < len(d.Blocks); {
		b := d.Blocks[i]
		var node *html.Node

		switch {
		case b.Kind.IsListItem():
			node = element(b.Kind.String())
			for ; i < len(d.Blocks) && d.Blocks[i].Kind == b.Kind; i++ {
				li := element("li")
				setAlign(li, d.Blocks[i].Align)
				appendRuns(li, d.Blocks[i].Runs)
				node.AppendChild(li)
			}
		case b.Kind == CodeBlock:
			node = element("pre")
			setAlign(node, b.Align)
			for first := true; i < len(d.Blocks) && d.Blocks[i].Kind == CodeBlock && d.Blocks[i].Align == b.Align; i++ {
				if !first {
					node.AppendChild(text("\n"))
				}
				appendRuns(node, d.Blocks[i].Runs)
				first = false
			}
		default:
			node = element(b.Kind.String())
			setAlign(node, b.Align)
			appendRuns(node, b.Runs)
			if node.FirstChild == nil {
				node.AppendChild(element("br"))
			}
			i++
		}

		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&sb, node)
	}
	return sb.String()
}

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAlign(n *html.Node, a Align) {
	if a == AlignLeft {
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: "text-align: " + a.String() + ";"})
}

// appendRuns adds runs to parent. Neighbouring runs with the same link share
// one anchor; marks nest as b > i > u.
func appendRuns(parent *html.Node, runs []Run) {
	for i := 0; i < len(runs); {
		target := parent
		href := runs[i].Href
		if href != "" {
			a := element("a")
			a.Attr = []html.Attribute{{Key: "href", Val: href}}
			parent.AppendChild(a)
			target = a
		}
		for ; i < len(runs) && runs[i].Href == href; i++ {
			target.AppendChild(styled(runs[i]))
		}
	}
}

func styled(r Run) *html.Node {
	node := text(r.Text)
	for _, w := range []struct {
		mark Mark
		tag  string
	}{{Underline, "u"}, {Italic, "i"}, {Bold, "b"}} {
		if r.Marks.Has(w.mark) {
			el := element(w.tag)
			el.AppendChild(node)
			node = el
		}
	}
	return node
}

var alignPattern = regexp.MustCompile(`text-align\s*:\s*(left|center|right)`)

// Parse builds a document from an HTML fragment. Unknown elements contribute
// their text; script and style elements are dropped.
func Parse(s string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	p := &parser{doc: &Document{}}
	ctx := blockContext{kind: Paragraph}
	for _, n := range nodes {
		p.walk(n, ctx, inlineStyle{})
	}
	p.closeBlock()

	if len(p.doc.Blocks) == 0 {
		return NewDocument(), nil
	}
	return p.doc, nil
}

type blockContext struct {
	kind  BlockKind
	align Align
}

type inlineStyle struct {
	marks Mark
	href  string
}

type parser struct {
	doc  *Document
	open *Block
}

func (p *parser) openBlock(ctx blockContext) *Block {
	if p.open == nil {
		p.open = &Block{Kind: ctx.kind, Align: ctx.align}
	}
	return p.open
}

func (p *parser) closeBlock() {
	if p.open == nil {
		return
	}
	p.open.normalize()
	p.doc.Blocks = append(p.doc.Blocks, p.open)
	p.open = nil
}

func (p *parser) appendText(s string, ctx blockContext, st inlineStyle) {
	if s == "" {
		return
	}
	if p.open == nil && strings.TrimSpace(s) == "" {
		return
	}
	b := p.openBlock(ctx)
	b.Runs = append(b.Runs, Run{Text: s, Marks: st.marks, Href: st.href})
}

func (p *parser) walk(n *html.Node, ctx blockContext, st inlineStyle) {
	switch n.Type {
	case html.TextNode:
		if ctx.kind != CodeBlock {
			p.appendText(n.Data, ctx, st)
			return
		}
		// Each newline ends the current code line, which may be empty.
		for i, line := range strings.Split(n.Data, "\n") {
			if i > 0 {
				p.openBlock(ctx)
				p.closeBlock()
				p.openBlock(ctx)
			}
			if line != "" {
				b := p.openBlock(ctx)
				b.Runs = append(b.Runs, Run{Text: line, Marks: st.marks, Href: st.href})
			}
		}
		return
	case html.ElementNode:
	default:
		p.children(n, ctx, st)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template:
		return
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Li:
		p.block(n, ctx, st)
	case atom.Ul:
		p.children(n, blockContext{kind: BulletItem, align: ctx.align}, st)
	case atom.Ol:
		p.children(n, blockContext{kind: NumberedItem, align: ctx.align}, st)
	case atom.Br:
		p.openBlock(ctx)
		p.closeBlock()
	case atom.B, atom.Strong:
		st.marks |= Bold
		p.children(n, ctx, st)
	case atom.I, atom.Em:
		st.marks |= Italic
		p.children(n, ctx, st)
	case atom.U:
		st.marks |= Underline
		p.children(n, ctx, st)
	case atom.A:
		if href := attr(n, "href"); href != "" {
			st.href = href
		}
		p.children(n, ctx, st)
	default:
		p.children(n, ctx, st)
	}
}

// block handles a block-level element: it ends any open block, walks the
// element's content in its own context, and emits an empty block for an
// element without content.
func (p *parser) block(n *html.Node, ctx blockContext, st inlineStyle) {
	p.closeBlock()
	before := len(p.doc.Blocks)

	inner := blockContext{kind: ctx.kind, align: ctx.align}
	switch n.DataAtom {
	case atom.H1:
		inner.kind = Heading1
	case atom.H2:
		inner.kind = Heading2
	case atom.H3, atom.H4, atom.H5, atom.H6:
		inner.kind = Heading3
	case atom.Blockquote:
		inner.kind = Quote
	case atom.Pre:
		inner.kind = CodeBlock
	case atom.Li:
		if !ctx.kind.IsListItem() {
			inner.kind = BulletItem
		}
	}
	if a, ok := parseAlign(n); ok {
		inner.align = a
	}

	p.children(n, inner, st)
	p.closeBlock()

	if len(p.doc.Blocks) == before {
		p.openBlock(inner)
		p.closeBlock()
	}
}

func (p *parser) children(n *html.Node, ctx blockContext, st inlineStyle) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, ctx, st)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parseAlign(n *html.Node) (Align, bool) {
	value := attr(n, "align")
	if m := alignPattern.FindStringSubmatch(attr(n, "style")); m != nil {
		value = m[1]
	}
	switch strings.ToLower(value) {
	case "left":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right":
		return AlignRight, true
	}
	return AlignLeft, false
}
