package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotjot/internal/share"
)

func pos(block, offset int) Position {
	return Position{Block: block, Offset: offset}
}

func TestEditor_Typing(t *testing.T) {
	e := New()
	assert.Equal(t, "", e.HTML())
	assert.True(t, e.Document().Empty())

	e.InsertText("Hello")
	assert.Equal(t, "<p>Hello</p>", e.HTML())
	assert.Equal(t, Caret(pos(0, 5)), e.Selection())

	e.InsertText("\nworld")
	assert.Equal(t, "<p>Hello</p><p>world</p>", e.HTML())
	assert.Equal(t, "Hello\nworld", e.Document().Text())
}

func TestEditor_ToggleMarkAtCaret(t *testing.T) {
	e := New()
	e.InsertText("Hello")

	require.NoError(t, e.Exec(CmdBold, ""))
	assert.True(t, e.Active().Bold, "pending mark is reported as active")
	assert.Equal(t, "<p>Hello</p>", e.HTML(), "toggling at a caret changes no text")

	e.InsertText(" world")
	assert.Equal(t, "<p>Hello<b> world</b></p>", e.HTML())
	assert.True(t, e.Active().Bold)

	require.NoError(t, e.Exec(CmdBold, ""))
	e.InsertText("!")
	assert.Equal(t, "<p>Hello<b> world</b>!</p>", e.HTML())
	assert.False(t, e.Active().Bold)
}

func TestEditor_ToggleMarkOnRange(t *testing.T) {
	e := New()
	e.InsertText("abc def")

	e.Select(pos(0, 0), pos(0, 3))
	require.NoError(t, e.Exec(CmdBold, ""))
	assert.Equal(t, "<p><b>abc</b> def</p>", e.HTML())
	assert.True(t, e.Active().Bold)
	assert.True(t, e.Active().Has("bold"))

	// A partly bold selection becomes fully bold.
	e.Select(pos(0, 7), pos(0, 0))
	assert.False(t, e.Active().Bold)
	require.NoError(t, e.Exec(CmdBold, ""))
	assert.Equal(t, "<p><b>abc def</b></p>", e.HTML())

	require.NoError(t, e.Exec(CmdBold, ""))
	assert.Equal(t, "<p>abc def</p>", e.HTML())

	e.SelectAll()
	require.NoError(t, e.Exec(CmdBold, ""))
	require.NoError(t, e.Exec(CmdItalic, ""))
	require.NoError(t, e.Exec(CmdUnderline, ""))
	assert.Equal(t, "<p><b><i><u>abc def</u></i></b></p>", e.HTML())
	assert.True(t, e.Active().Italic)
	assert.True(t, e.Active().Underline)
}

func TestEditor_Lists(t *testing.T) {
	e := New()
	e.InsertText("one\ntwo")
	e.SelectAll()

	require.NoError(t, e.Exec(CmdUnorderedList, ""))
	assert.Equal(t, "<ul><li>one</li><li>two</li></ul>", e.HTML())
	assert.True(t, e.Active().Has("ul"))
	assert.False(t, e.Active().Has("ol"))

	require.NoError(t, e.Exec(CmdOrderedList, ""))
	assert.Equal(t, "<ol><li>one</li><li>two</li></ol>", e.HTML())
	assert.True(t, e.Active().NumberedList)

	require.NoError(t, e.Exec(CmdOrderedList, ""))
	assert.Equal(t, "<p>one</p><p>two</p>", e.HTML())
}

func TestEditor_EnterInList(t *testing.T) {
	e := New()
	require.NoError(t, e.Exec(CmdUnorderedList, ""))
	e.InsertText("a")

	e.SplitBlock()
	assert.Equal(t, "<ul><li>a</li><li></li></ul>", e.HTML())

	// Enter on an empty item leaves the list.
	e.SplitBlock()
	assert.Equal(t, "<ul><li>a</li></ul><p><br></p>", e.HTML())
	assert.Len(t, e.Document().Blocks, 2)
	assert.False(t, e.Active().BulletList)
}

func TestEditor_FormatBlock(t *testing.T) {
	e := New()
	e.InsertText("Title")

	require.NoError(t, e.Exec(CmdFormatBlock, "<h1>"))
	assert.Equal(t, "<h1>Title</h1>", e.HTML())
	assert.True(t, e.Active().Has("h1"))

	e.SplitBlock()
	e.InsertText("body")
	assert.Equal(t, "<h1>Title</h1><p>body</p>", e.HTML())

	require.NoError(t, e.Exec(CmdFormatBlock, "blockquote"))
	assert.Equal(t, "<h1>Title</h1><blockquote>body</blockquote>", e.HTML())

	require.NoError(t, e.Exec(CmdFormatBlock, "pre"))
	assert.True(t, e.Active().Has("pre"))
	assert.Equal(t, "<h1>Title</h1><pre>body</pre>", e.HTML())

	err := e.Exec(CmdFormatBlock, "h7")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestEditor_UnknownCommand(t *testing.T) {
	err := New().Exec(Command("strikeThrough"), "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestEditor_Alignment(t *testing.T) {
	e := New()
	e.InsertText("x")

	require.NoError(t, e.Exec(CmdJustifyCenter, ""))
	assert.Equal(t, `<p style="text-align: center;">x</p>`, e.HTML())
	assert.Equal(t, AlignCenter, e.Active().Align)

	require.NoError(t, e.Exec(CmdJustifyRight, ""))
	assert.Equal(t, `<p style="text-align: right;">x</p>`, e.HTML())

	require.NoError(t, e.Exec(CmdJustifyLeft, ""))
	assert.Equal(t, "<p>x</p>", e.HTML())
}

func TestEditor_CreateLink(t *testing.T) {
	e := New()
	e.InsertText("see docs")
	e.Select(pos(0, 4), pos(0, 8))

	require.NoError(t, e.Exec(CmdCreateLink, "https://example.com"))
	assert.Equal(t, `<p>see <a href="https://example.com">docs</a></p>`, e.HTML())
	assert.Equal(t, "https://example.com", e.Active().Link)

	// Typing after a link does not extend it.
	e.Select(e.Document().End(), e.Document().End())
	e.InsertText("!")
	assert.Equal(t, `<p>see <a href="https://example.com">docs</a>!</p>`, e.HTML())

	// Typing inside a link does.
	e.Select(pos(0, 5), pos(0, 5))
	e.InsertText("x")
	assert.Equal(t, `<p>see <a href="https://example.com">dxocs</a>!</p>`, e.HTML())
}

func TestEditor_CreateLinkAtCaret(t *testing.T) {
	e := New()
	require.NoError(t, e.Exec(CmdCreateLink, "https://x.io"))
	assert.Equal(t, `<p><a href="https://x.io">https://x.io</a></p>`, e.HTML())
	assert.Equal(t, Selection{Anchor: pos(0, 0), Focus: pos(0, 12)}, e.Selection())

	before := e.HTML()
	require.NoError(t, e.Exec(CmdCreateLink, "  "))
	assert.Equal(t, before, e.HTML(), "empty url is ignored")
}

func TestEditor_HandleKey(t *testing.T) {
	e := New()
	e.InsertText("ab")
	e.SelectAll()

	assert.True(t, e.HandleKey(KeyEvent{Key: "b", Ctrl: true}))
	assert.Equal(t, "<p><b>ab</b></p>", e.HTML())

	assert.True(t, e.HandleKey(KeyEvent{Key: "i", Meta: true}))
	assert.Equal(t, "<p><b><i>ab</i></b></p>", e.HTML())

	assert.False(t, e.HandleKey(KeyEvent{Key: "b"}))
	assert.False(t, e.HandleKey(KeyEvent{Key: "x", Ctrl: true}))
	assert.Equal(t, "<p><b><i>ab</i></b></p>", e.HTML())

	// Shift and Caps Lock report the upper-case key.
	assert.True(t, e.HandleKey(KeyEvent{Key: "U", Ctrl: true, Shift: true}))
	assert.Equal(t, "<p><b><i><u>ab</u></i></b></p>", e.HTML())
	assert.True(t, e.HandleKey(KeyEvent{Key: "B", Meta: true}))
	assert.Equal(t, "<p><i><u>ab</u></i></p>", e.HTML())
}

func TestEditor_DeleteBackward(t *testing.T) {
	e := New()
	e.InsertText("ab\ncd")

	e.Select(pos(1, 0), pos(1, 0))
	e.DeleteBackward()
	assert.Equal(t, "<p>abcd</p>", e.HTML())
	assert.Equal(t, Caret(pos(0, 2)), e.Selection())

	e.DeleteBackward()
	assert.Equal(t, "<p>acd</p>", e.HTML())

	e.Select(pos(0, 0), pos(0, 0))
	e.DeleteBackward()
	assert.Equal(t, "<p>acd</p>", e.HTML(), "nothing before the first character")
}

func TestEditor_DeleteSelectionAcrossBlocks(t *testing.T) {
	e := New()
	e.InsertText("one\ntwo\nthree")

	e.Select(pos(2, 2), pos(0, 1))
	e.DeleteBackward()
	assert.Equal(t, "<p>oree</p>", e.HTML())
	assert.Equal(t, Caret(pos(0, 1)), e.Selection())
}

func TestEditor_DeleteAtListStart(t *testing.T) {
	e := New()
	require.NoError(t, e.Exec(CmdUnorderedList, ""))
	e.InsertText("a")
	e.Select(pos(0, 0), pos(0, 0))

	e.DeleteBackward()
	assert.Equal(t, "<p>a</p>", e.HTML())
}

func TestEditor_InsertReplacesSelection(t *testing.T) {
	e := New()
	e.InsertText("abc def")
	e.Select(pos(0, 0), pos(0, 3))
	e.InsertText("xyz")
	assert.Equal(t, "<p>xyz def</p>", e.HTML())
}

func TestEditor_SelectClamps(t *testing.T) {
	e := New()
	e.InsertText("ab")
	e.Select(pos(-1, 0), pos(9, 9))
	assert.Equal(t, Selection{Anchor: pos(0, 0), Focus: pos(0, 2)}, e.Selection())
}

func TestEditor_Counts(t *testing.T) {
	e := New()
	assert.Equal(t, 0, e.Counts().Words)

	e.InsertText("Hello brave new world")
	c := e.Counts()
	assert.Equal(t, 4, c.Words)
	assert.Equal(t, 21, c.Characters)
}

type fakeSharer struct {
	got string
	err error
}

func (f *fakeSharer) Create(_ context.Context, content string) (share.Result, error) {
	f.got = content
	if f.err != nil {
		return share.Result{}, f.err
	}
	return share.Result{ID: "abcdefghij", ShareURL: "http://localhost:3000/s/abcdefghij"}, nil
}

func TestEditor_Share(t *testing.T) {
	e := New()
	e.InsertText("note")
	s := &fakeSharer{}

	link, err := e.Share(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/s/abcdefghij", link)
	assert.Equal(t, "<p>note</p>", s.got)

	boom := errors.New("boom")
	_, err = e.Share(context.Background(), &fakeSharer{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestDocument_PositionAt(t *testing.T) {
	doc, err := Parse("<p>ab</p><p>cd</p>")
	require.NoError(t, err)

	assert.Equal(t, pos(0, 0), doc.PositionAt(0))
	assert.Equal(t, pos(0, 2), doc.PositionAt(2))
	assert.Equal(t, pos(1, 0), doc.PositionAt(3))
	assert.Equal(t, pos(1, 2), doc.PositionAt(5))
	assert.Equal(t, doc.End(), doc.PositionAt(99))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bare text", "plain <strong>text</strong><br>next", "<p>plain <b>text</b></p><p>next</p>"},
		{"empty paragraph", "<p></p><p>b</p>", "<p><br></p><p>b</p>"},
		{"script dropped", "<p>a<script>alert(1)</script></p>", "<p>a</p>"},
		{"quote paragraphs", "<blockquote><p>q1</p><p>q2</p></blockquote>", "<blockquote>q1</blockquote><blockquote>q2</blockquote>"},
		{"emphasis", "<p><em>a</em><u>b</u></p>", "<p><i>a</i><u>b</u></p>"},
		{"deep heading", "<h5>x</h5>", "<h3>x</h3>"},
		{"align attribute", `<div align="center">x</div>`, `<p style="text-align: center;">x</p>`},
		{"code lines", "<pre>a\nb</pre>", "<pre>a\nb</pre>"},
		{"whitespace between blocks", "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>", "<ul><li>a</li><li>b</li></ul>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.HTML())
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	in := `<h2 style="text-align: right;">T</h2>` +
		`<ul><li>a</li><li><b>b</b></li></ul>` +
		`<p>see <a href="https://example.com"><b>bold</b> link</a></p>` +
		`<pre>x` + "\n\n" + `y</pre>`

	doc, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, in, doc.HTML())

	kinds := make([]BlockKind, len(doc.Blocks))
	for i, b := range doc.Blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []BlockKind{Heading2, BulletItem, BulletItem, Paragraph, CodeBlock, CodeBlock, CodeBlock}, kinds)
	assert.Equal(t, AlignRight, doc.Blocks[0].Align)
}

func TestFromHTML(t *testing.T) {
	e, err := FromHTML("<p><b>bold</b></p>")
	require.NoError(t, err)
	assert.Equal(t, Caret(pos(0, 4)), e.Selection())
	assert.True(t, e.Active().Bold)

	e.InsertText("er")
	assert.Equal(t, "<p><b>bolder</b></p>", e.HTML())
}
