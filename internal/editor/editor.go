// Package editor is the document model behind the note editor: blocks of
// styled runs, a selection, and the formatting commands the toolbar and
// keyboard shortcuts dispatch.
//
// An Editor is not safe for concurrent use. Every mutating call runs to
// completion and refreshes the active-format snapshot before returning.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"jotjot/internal/markup"
	"jotjot/internal/share"
)

// Command names a formatting action.
type Command string

const (
	CmdBold          Command = "bold"
	CmdItalic        Command = "italic"
	CmdUnderline     Command = "underline"
	CmdFormatBlock   Command = "formatBlock"
	CmdUnorderedList Command = "insertUnorderedList"
	CmdOrderedList   Command = "insertOrderedList"
	CmdJustifyLeft   Command = "justifyLeft"
	CmdJustifyCenter Command = "justifyCenter"
	CmdJustifyRight  Command = "justifyRight"
	CmdCreateLink    Command = "createLink"
)

var (
	// ErrUnknownCommand is returned by Exec for commands it does not know.
	ErrUnknownCommand = errors.New("unknown editor command")

	// ErrInvalidValue is returned by Exec when a command value is not accepted.
	ErrInvalidValue = errors.New("invalid command value")
)

var formatBlockKinds = map[string]BlockKind{
	"p":          Paragraph,
	"h1":         Heading1,
	"h2":         Heading2,
	"h3":         Heading3,
	"blockquote": Quote,
	"pre":        CodeBlock,
}

// Formats is the formatting state at the current selection, used to
// highlight toolbar buttons.
type Formats struct {
	Bold         bool
	Italic       bool
	Underline    bool
	BulletList   bool
	NumberedList bool
	Block        BlockKind
	Align        Align
	Link         string
}

// Has reports whether the toolbar toggle called name is active. Names follow
// the toolbar: bold, italic, underline, ul, ol, h1, h2, h3, blockquote, pre.
func (f Formats) Has(name string) bool {
	switch name {
	case "bold":
		return f.Bold
	case "italic":
		return f.Italic
	case "underline":
		return f.Underline
	case "ul":
		return f.BulletList
	case "ol":
		return f.NumberedList
	}
	if kind, ok := formatBlockKinds[name]; ok && kind != Paragraph {
		return f.Block == kind
	}
	return false
}

// KeyEvent is a key press delivered to the editor.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

var shortcuts = map[string]Command{
	"b": CmdBold,
	"i": CmdItalic,
	"u": CmdUnderline,
}

// Sharer publishes note HTML and returns where it can be read.
type Sharer interface {
	Create(ctx context.Context, content string) (share.Result, error)
}

// Editor holds a document, the selection within it and the derived
// active-format state.
type Editor struct {
	doc *Document
	sel Selection

	// typing holds marks chosen with a collapsed caret, applied to the next
	// inserted text.
	typing *Mark
	active Formats
}

// New returns an editor on an empty document.
func New() *Editor {
	e := &Editor{doc: NewDocument()}
	e.refresh()
	return e
}

// FromHTML returns an editor on the document parsed from s with the caret
// at the end.
func FromHTML(s string) (*Editor, error) {
	doc, err := Parse(s)
	if err != nil {
		return nil, err
	}
	e := &Editor{doc: doc, sel: Caret(doc.End())}
	e.refresh()
	return e, nil
}

// Document returns the edited document.
func (e *Editor) Document() *Document {
	return e.doc
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	return e.sel
}

// Active returns the formatting state at the selection.
func (e *Editor) Active() Formats {
	return e.active
}

// HTML renders the document.
func (e *Editor) HTML() string {
	return e.doc.HTML()
}

// Counts returns the word and character counts of the rendered document.
func (e *Editor) Counts() markup.Counts {
	return markup.Count(e.HTML())
}

// Share publishes the current HTML and returns the share link.
func (e *Editor) Share(ctx context.Context, s Sharer) (string, error) {
	res, err := s.Create(ctx, e.HTML())
	if err != nil {
		return "", fmt.Errorf("share note: %w", err)
	}
	return res.ShareURL, nil
}

// Select moves the selection. Positions outside the document are clamped.
func (e *Editor) Select(anchor, focus Position) {
	e.sel = Selection{Anchor: e.doc.clamp(anchor), Focus: e.doc.clamp(focus)}
	e.typing = nil
	e.refresh()
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() {
	e.Select(Position{}, e.doc.End())
}

// HandleKey applies keyboard shortcuts. It returns true when the key was
// consumed and the host's default handling must be suppressed.
func (e *Editor) HandleKey(k KeyEvent) bool {
	if !k.Ctrl && !k.Meta {
		return false
	}
	cmd, ok := shortcuts[strings.ToLower(k.Key)]
	if !ok {
		return false
	}
	// Mark toggles take no value and cannot fail.
	_ = e.Exec(cmd, "")
	return true
}

// Exec runs a formatting command on the selection.
func (e *Editor) Exec(cmd Command, value string) error {
	switch cmd {
	case CmdBold:
		e.toggleMark(Bold)
	case CmdItalic:
		e.toggleMark(Italic)
	case CmdUnderline:
		e.toggleMark(Underline)
	case CmdFormatBlock:
		tag := strings.ToLower(strings.Trim(strings.TrimSpace(value), "<>"))
		kind, ok := formatBlockKinds[tag]
		if !ok {
			return fmt.Errorf("%w: formatBlock %q", ErrInvalidValue, value)
		}
		e.eachSelectedBlock(func(b *Block) { b.Kind = kind })
	case CmdUnorderedList:
		e.toggleList(BulletItem)
	case CmdOrderedList:
		e.toggleList(NumberedItem)
	case CmdJustifyLeft:
		e.eachSelectedBlock(func(b *Block) { b.Align = AlignLeft })
	case CmdJustifyCenter:
		e.eachSelectedBlock(func(b *Block) { b.Align = AlignCenter })
	case CmdJustifyRight:
		e.eachSelectedBlock(func(b *Block) { b.Align = AlignRight })
	case CmdCreateLink:
		e.createLink(strings.TrimSpace(value))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	e.refresh()
	return nil
}

// InsertText replaces the selection with s. Newlines split blocks.
func (e *Editor) InsertText(s string) {
	if s == "" {
		return
	}
	e.deleteSelection()
	marks, href := e.insertionStyle()

	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			e.splitAtCaret()
		}
		if line == "" {
			continue
		}
		pos := e.sel.Focus
		b := e.doc.Blocks[pos.Block]

		ins := make([]glyph, 0, len(line))
		for _, r := range line {
			ins = append(ins, glyph{r: r, marks: marks, href: href})
		}
		b.setGlyphs(slices.Insert(b.glyphs(), pos.Offset, ins...))
		e.sel = Caret(Position{Block: pos.Block, Offset: pos.Offset + len(ins)})
	}

	e.typing = nil
	e.refresh()
}

// SplitBlock replaces the selection with a block break.
func (e *Editor) SplitBlock() {
	e.deleteSelection()
	e.splitAtCaret()
	e.typing = nil
	e.refresh()
}

// DeleteBackward removes the selection, or the character before the caret.
// At the start of a list item it turns the item into a paragraph; at the
// start of any other block it joins the block onto the previous one.
func (e *Editor) DeleteBackward() {
	defer e.refresh()
	e.typing = nil

	if !e.sel.Collapsed() {
		e.deleteSelection()
		return
	}

	pos := e.sel.Focus
	b := e.doc.Blocks[pos.Block]
	switch {
	case pos.Offset > 0:
		gs := b.glyphs()
		b.setGlyphs(slices.Delete(gs, pos.Offset-1, pos.Offset))
		e.sel = Caret(Position{Block: pos.Block, Offset: pos.Offset - 1})
	case b.Kind.IsListItem():
		b.Kind = Paragraph
	case pos.Block > 0:
		prev := e.doc.Blocks[pos.Block-1]
		offset := prev.Len()
		prev.setGlyphs(append(prev.glyphs(), b.glyphs()...))
		e.doc.Blocks = slices.Delete(e.doc.Blocks, pos.Block, pos.Block+1)
		e.sel = Caret(Position{Block: pos.Block - 1, Offset: offset})
	}
}

func (e *Editor) deleteSelection() {
	start, end := e.sel.Ordered()
	if start == end {
		return
	}
	first := e.doc.Blocks[start.Block]
	last := e.doc.Blocks[end.Block]

	head := first.glyphs()[:start.Offset]
	tail := last.glyphs()[end.Offset:]
	first.setGlyphs(append(head, tail...))

	e.doc.Blocks = slices.Delete(e.doc.Blocks, start.Block+1, end.Block+1)
	e.sel = Caret(start)
}

// splitAtCaret breaks the caret block in two. Enter on an empty list item
// leaves the list instead, and the block after a heading is a paragraph.
func (e *Editor) splitAtCaret() {
	pos := e.sel.Focus
	b := e.doc.Blocks[pos.Block]
	gs := b.glyphs()

	if b.Kind.IsListItem() && len(gs) == 0 {
		b.Kind = Paragraph
		return
	}

	next := &Block{Kind: b.Kind, Align: b.Align}
	if pos.Offset == len(gs) && isHeading(b.Kind) {
		next.Kind = Paragraph
	}
	next.setGlyphs(gs[pos.Offset:])
	b.setGlyphs(gs[:pos.Offset])

	e.doc.Blocks = slices.Insert(e.doc.Blocks, pos.Block+1, next)
	e.sel = Caret(Position{Block: pos.Block + 1, Offset: 0})
}

func isHeading(k BlockKind) bool {
	return k == Heading1 || k == Heading2 || k == Heading3
}

// insertionStyle returns the styles new text takes at the caret: the pending
// typing marks if any, else those of the neighbouring character. Text
// continues a link only strictly inside it.
func (e *Editor) insertionStyle() (Mark, string) {
	before, after, hasBefore, hasAfter := e.neighbours(e.sel.Focus)

	var marks Mark
	switch {
	case e.typing != nil:
		marks = *e.typing
	case hasBefore:
		marks = before.marks
	case hasAfter:
		marks = after.marks
	}

	href := ""
	if hasBefore && hasAfter && before.href != "" && before.href == after.href {
		href = before.href
	}
	return marks, href
}

func (e *Editor) neighbours(p Position) (before, after glyph, hasBefore, hasAfter bool) {
	gs := e.doc.Blocks[p.Block].glyphs()
	if p.Offset > 0 {
		before, hasBefore = gs[p.Offset-1], true
	}
	if p.Offset < len(gs) {
		after, hasAfter = gs[p.Offset], true
	}
	return
}

// caretMarks returns the marks in effect at a collapsed caret.
func (e *Editor) caretMarks() Mark {
	marks, _ := e.insertionStyle()
	return marks
}

func (e *Editor) toggleMark(m Mark) {
	if e.sel.Collapsed() {
		next := e.caretMarks() ^ m
		e.typing = &next
		return
	}

	start, end := e.sel.Ordered()
	all := true
	e.eachSelectedGlyph(start, end, func(g *glyph) {
		all = all && g.marks.Has(m)
	})
	e.eachSelectedGlyph(start, end, func(g *glyph) {
		if all {
			g.marks &^= m
		} else {
			g.marks |= m
		}
	})
}

func (e *Editor) toggleList(kind BlockKind) {
	all := true
	e.eachSelectedBlock(func(b *Block) {
		all = all && b.Kind == kind
	})
	e.eachSelectedBlock(func(b *Block) {
		if all {
			b.Kind = Paragraph
		} else {
			b.Kind = kind
		}
	})
}

// createLink links the selected text to url. With a caret, the url itself is
// inserted as link text. An empty url does nothing.
func (e *Editor) createLink(url string) {
	if url == "" {
		return
	}
	if !e.sel.Collapsed() {
		start, end := e.sel.Ordered()
		e.eachSelectedGlyph(start, end, func(g *glyph) { g.href = url })
		return
	}

	pos := e.sel.Focus
	b := e.doc.Blocks[pos.Block]
	marks := e.caretMarks()
	ins := make([]glyph, 0, len(url))
	for _, r := range url {
		ins = append(ins, glyph{r: r, marks: marks, href: url})
	}
	b.setGlyphs(slices.Insert(b.glyphs(), pos.Offset, ins...))
	e.sel = Selection{Anchor: pos, Focus: Position{Block: pos.Block, Offset: pos.Offset + len(ins)}}
	e.typing = nil
}

// eachSelectedGlyph calls fn for every character between start and end and
// writes the modified characters back.
func (e *Editor) eachSelectedGlyph(start, end Position, fn func(g *glyph)) {
	for bi := start.Block; bi <= end.Block; bi++ {
		b := e.doc.Blocks[bi]
		gs := b.glyphs()
		from, to := 0, len(gs)
		if bi == start.Block {
			from = start.Offset
		}
		if bi == end.Block {
			to = end.Offset
		}
		for i := from; i < to; i++ {
			fn(&gs[i])
		}
		b.setGlyphs(gs)
	}
}

func (e *Editor) eachSelectedBlock(fn func(b *Block)) {
	start, end := e.sel.Ordered()
	for bi := start.Block; bi <= end.Block; bi++ {
		fn(e.doc.Blocks[bi])
	}
}

// refresh recomputes the active formats from the document and selection.
func (e *Editor) refresh() {
	var f Formats
	focus := e.doc.Blocks[e.sel.Focus.Block]
	f.Block = focus.Kind
	f.Align = focus.Align
	f.BulletList = focus.Kind == BulletItem
	f.NumberedList = focus.Kind == NumberedItem

	var marks Mark
	if e.sel.Collapsed() {
		marks = e.caretMarks()
		before, after, hasBefore, hasAfter := e.neighbours(e.sel.Focus)
		switch {
		case hasBefore && before.href != "":
			f.Link = before.href
		case hasAfter && after.href != "":
			f.Link = after.href
		}
	} else {
		start, end := e.sel.Ordered()
		marks = Bold | Italic | Underline
		seen := false
		link := ""
		sameLink := true
		e.eachSelectedGlyph(start, end, func(g *glyph) {
			if !seen {
				link = g.href
			}
			seen = true
			marks &= g.marks
			sameLink = sameLink && g.href == link
		})
		if !seen {
			marks = 0
		}
		if sameLink {
			f.Link = link
		}
	}

	f.Bold = marks.Has(Bold)
	f.Italic = marks.Has(Italic)
	f.Underline = marks.Has(Underline)
	e.active = f
}
