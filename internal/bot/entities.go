package bot

import (
	"unicode/utf16"

	"github.com/go-telegram/bot/models"

	"jotjot/internal/editor"
)

// MessageHTML converts a Telegram message and its formatting entities into
// note HTML. Block entities are applied before inline ones; entity types the
// editor has no equivalent for are ignored.
func MessageHTML(text string, entities []models.MessageEntity) string {
	e := editor.New()
	e.InsertText(text)
	doc := e.Document()
	offsets := runeOffsets(text)

	span := func(ent models.MessageEntity) (editor.Position, editor.Position) {
		start := offsets[clampOffset(ent.Offset, len(offsets))]
		end := offsets[clampOffset(ent.Offset+ent.Length, len(offsets))]
		return doc.PositionAt(start), doc.PositionAt(end)
	}

	for _, pass := range []func(ent models.MessageEntity) (editor.Command, string, bool){blockCommand, inlineCommand} {
		for _, ent := range entities {
			cmd, value, ok := pass(ent)
			if !ok || ent.Length <= 0 {
				continue
			}
			e.Select(span(ent))
			// Commands come from the fixed tables below and always exist.
			_ = e.Exec(cmd, value)
		}
	}
	return e.HTML()
}

func blockCommand(ent models.MessageEntity) (editor.Command, string, bool) {
	switch string(ent.Type) {
	case "pre":
		return editor.CmdFormatBlock, "pre", true
	case "blockquote", "expandable_blockquote":
		return editor.CmdFormatBlock, "blockquote", true
	}
	return "", "", false
}

func inlineCommand(ent models.MessageEntity) (editor.Command, string, bool) {
	switch string(ent.Type) {
	case "bold":
		return editor.CmdBold, "", true
	case "italic":
		return editor.CmdItalic, "", true
	case "underline":
		return editor.CmdUnderline, "", true
	case "text_link":
		return editor.CmdCreateLink, ent.URL, ent.URL != ""
	}
	return "", "", false
}

// runeOffsets maps each UTF-16 offset of text, which Telegram entities use,
// to a character offset. The final element maps the end of the text.
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	i := 0
	for _, r := range text {
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		for j := 0; j < n; j++ {
			offsets = append(offsets, i)
		}
		i++
	}
	return append(offsets, i)
}

func clampOffset(off, n int) int {
	if off < 0 {
		return 0
	}
	if off >= n {
		return n - 1
	}
	return off
}

// PlainText returns the text of note HTML, one line per block.
func PlainText(content string) string {
	doc, err := editor.Parse(content)
	if err != nil {
		return content
	}
	return doc.Text()
}
