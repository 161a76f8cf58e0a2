package bot

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func entity(typ string, offset, length int) models.MessageEntity {
	return models.MessageEntity{Type: models.MessageEntityType(typ), Offset: offset, Length: length}
}

func TestMessageHTML(t *testing.T) {
	link := entity("text_link", 4, 4)
	link.URL = "https://x.io"

	tests := []struct {
		name     string
		text     string
		entities []models.MessageEntity
		want     string
	}{
		{"plain", "Hello", nil, "<p>Hello</p>"},
		{"bold", "Hello world", []models.MessageEntity{entity("bold", 6, 5)}, "<p>Hello <b>world</b></p>"},
		{"nested marks", "x", []models.MessageEntity{entity("underline", 0, 1), entity("italic", 0, 1)}, "<p><i><u>x</u></i></p>"},
		{"lines", "one\ntwo", nil, "<p>one</p><p>two</p>"},
		{"link", "see docs\nnext", []models.MessageEntity{link}, `<p>see <a href="https://x.io">docs</a></p><p>next</p>`},
		{"pre", "code\nmore", []models.MessageEntity{entity("pre", 0, 9)}, "<pre>code\nmore</pre>"},
		{"quote", "q", []models.MessageEntity{entity("blockquote", 0, 1)}, "<blockquote>q</blockquote>"},
		{"surrogate pairs", "😀 hi", []models.MessageEntity{entity("bold", 3, 2)}, "<p>😀 <b>hi</b></p>"},
		{"unsupported", "@someone", []models.MessageEntity{entity("mention", 0, 8)}, "<p>@someone</p>"},
		{"out of range", "ab", []models.MessageEntity{entity("bold", 1, 50)}, "<p>a<b>b</b></p>"},
		{"escaped", "1 < 2", nil, "<p>1 &lt; 2</p>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MessageHTML(tc.text, tc.entities))
		})
	}
}

func TestRuneOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, runeOffsets("ab"))
	assert.Equal(t, []int{0, 0, 1, 2, 3}, runeOffsets("😀ab"))
	assert.Equal(t, []int{0}, runeOffsets(""))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world\nsecond", PlainText("<p>Hello <b>world</b></p><p>second</p>"))
	assert.Equal(t, "", PlainText(""))
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		text string
		args string
		ok   bool
	}{
		{"/get", "", true},
		{"/get Ab3x9KT2cQ", "Ab3x9KT2cQ", true},
		{"/get@JotJotBot  Ab3x9KT2cQ ", "Ab3x9KT2cQ", true},
		{"/getting started", "", false},
		{"/get\nAb3x9KT2cQ", "", false},
		{"please /get it", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			args, ok := commandArgs(tc.text, "/get")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.args, args)
		})
	}
}
