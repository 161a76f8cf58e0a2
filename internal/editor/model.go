package editor

import (
	"strings"
	"unicode/utf8"
)

// Mark is a set of inline text styles.
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Underline
)

// Has reports whether all styles of x are set in m.
func (m Mark) Has(x Mark) bool {
	return m&x == x
}

// BlockKind is the structural role of a block.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading1
	Heading2
	Heading3
	Quote
	CodeBlock
	BulletItem
	NumberedItem
)

var blockTags = map[BlockKind]string{
	Paragraph:    "p",
	Heading1:     "h1",
	Heading2:     "h2",
	Heading3:     "h3",
	Quote:        "blockquote",
	CodeBlock:    "pre",
	BulletItem:   "ul",
	NumberedItem: "ol",
}

// String returns the HTML tag name associated with the kind. List items
// report their list container.
func (k BlockKind) String() string {
	if tag, ok := blockTags[k]; ok {
		return tag
	}
	return "p"
}

// IsListItem reports whether blocks of this kind are rendered inside a list.
func (k BlockKind) IsListItem() bool {
	return k == BulletItem || k == NumberedItem
}

// Align is the horizontal alignment of a block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// Run is a span of text sharing the same styles.
type Run struct {
	Text  string
	Marks Mark
	Href  string
}

// Block is one paragraph-level element of a document.
type Block struct {
	Kind  BlockKind
	Align Align
	Runs  []Run
}

// Len returns the number of characters in the block.
func (b *Block) Len() int {
	n := 0
	for _, r := range b.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

// Text returns the unstyled text of the block.
func (b *Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// glyph is one styled character. Edits operate on glyph slices and are
// folded back into runs afterwards.
type glyph struct {
	r     rune
	marks Mark
	href  string
}

func (b *Block) glyphs() []glyph {
	gs := make([]glyph, 0, b.Len())
	for _, run := range b.Runs {
		for _, r := range run.Text {
			gs = append(gs, glyph{r: r, marks: run.Marks, href: run.Href})
		}
	}
	return gs
}

// setGlyphs replaces the block content, merging neighbouring glyphs with
// equal styles into a single run.
func (b *Block) setGlyphs(gs []glyph) {
	b.Runs = b.Runs[:0]
	var sb strings.Builder
	for i, g := range gs {
		if i > 0 && (g.marks != gs[i-1].marks || g.href != gs[i-1].href) {
			b.Runs = append(b.Runs, Run{Text: sb.String(), Marks: gs[i-1].marks, Href: gs[i-1].href})
			sb.Reset()
		}
		sb.WriteRune(g.r)
	}
	if len(gs) > 0 {
		last := gs[len(gs)-1]
		b.Runs = append(b.Runs, Run{Text: sb.String(), Marks: last.marks, Href: last.href})
	}
}

func (b *Block) normalize() {
	b.setGlyphs(b.glyphs())
}

// Document is an ordered list of blocks. A document always has at least one
// block.
type Document struct {
	Blocks []*Block
}

// NewDocument returns a document holding a single empty paragraph.
func NewDocument() *Document {
	return &Document{Blocks: []*Block{{Kind: Paragraph}}}
}

// Empty reports whether the document has no text and a single plain block.
func (d *Document) Empty() bool {
	return len(d.Blocks) == 1 && d.Blocks[0].Len() == 0 && d.Blocks[0].Kind == Paragraph
}

// Text returns the unstyled text of the document, one line per block.
func (d *Document) Text() string {
	lines := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		lines[i] = b.Text()
	}
	return strings.Join(lines, "\n")
}

// PositionAt maps a character offset into Text to a position. Offsets past
// the end map to the end of the document.
func (d *Document) PositionAt(offset int) Position {
	for i, b := range d.Blocks {
		n := b.Len()
		if offset <= n {
			return Position{Block: i, Offset: offset}
		}
		offset -= n + 1
	}
	return d.End()
}

// End returns the position after the last character.
func (d *Document) End() Position {
	last := len(d.Blocks) - 1
	return Position{Block: last, Offset: d.Blocks[last].Len()}
}

func (d *Document) clamp(p Position) Position {
	if p.Block < 0 {
		return Position{}
	}
	if p.Block >= len(d.Blocks) {
		return d.End()
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := d.Blocks[p.Block].Len(); p.Offset > n {
		p.Offset = n
	}
	return p
}

// Position addresses a caret location: a block index and a character
// offset within that block.
type Position struct {
	Block  int
	Offset int
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	if p.Block != q.Block {
		return p.Block < q.Block
	}
	return p.Offset < q.Offset
}

// Selection is the anchor (where selecting started) and focus (where the
// caret is) of the current selection.
type Selection struct {
	Anchor Position
	Focus  Position
}

// Caret returns a collapsed selection at p.
func Caret(p Position) Selection {
	return Selection{Anchor: p, Focus: p}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Focus
}

// Ordered returns the selection bounds in document order.
func (s Selection) Ordered() (start, end Position) {
	if s.Focus.Before(s.Anchor) {
		return s.Focus, s.Anchor
	}
	return s.Anchor, s.Focus
}
