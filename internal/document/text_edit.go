// Package document converts between LSP positions and byte offsets and applies edits to
// document text.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Text is document content with its line start offsets precomputed. LSP positions count
// UTF-16 code units; Text translates them to byte offsets and back.
type Text struct {
	content    string
	lineStarts []int
}

// NewText indexes the lines of content.
func NewText(content string) *Text {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &Text{content: content, lineStarts: starts}
}

func (t *Text) String() string {
	return t.content
}

// LineCount returns the number of lines; a trailing newline starts an empty last line.
func (t *Text) LineCount() int {
	return len(t.lineStarts)
}

// Line returns the content of a 0-based line without its newline.
func (t *Text) Line(line int) string {
	if line < 0 || line >= len(t.lineStarts) {
		return ""
	}

	end := len(t.content)
	if line+1 < len(t.lineStarts) {
		end = t.lineStarts[line+1] - 1
	}

	return t.content[t.lineStarts[line]:end]
}

// Offset converts an LSP position into a byte offset.
func (t *Text) Offset(pos protocol.Position) (int, error) {
	line := int(pos.Line)
	if line >= len(t.lineStarts) {
		return 0, fmt.Errorf("line %d out of range (0-%d)", line, len(t.lineStarts)-1)
	}

	col, err := byteColumn(t.Line(line), int(pos.Character))
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", line, err)
	}

	return t.lineStarts[line] + col, nil
}

// Position converts a byte offset into an LSP position.
func (t *Text) Position(offset int) (protocol.Position, error) {
	if offset < 0 || offset > len(t.content) {
		return protocol.Position{}, fmt.Errorf("offset %d out of range (0-%d)", offset, len(t.content))
	}

	// last line starting at or before offset
	lo, hi := 0, len(t.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	prefix := t.content[t.lineStarts[lo]:offset]

	return protocol.Position{
		Line:      protocol.UInteger(lo),
		Character: protocol.UInteger(utf16Len(prefix)),
	}, nil
}

// ByteColumn returns the 1-based byte column of an LSP position, the form syntax trees use.
func (t *Text) ByteColumn(pos protocol.Position) (line, column int, err error) {
	offset, err := t.Offset(pos)
	if err != nil {
		return 0, 0, err
	}

	return int(pos.Line) + 1, offset - t.lineStarts[pos.Line] + 1, nil
}

// LSPPosition converts a 1-based line and byte column into an LSP position.
func (t *Text) LSPPosition(line, column int) protocol.Position {
	if line < 1 || line > len(t.lineStarts) {
		return protocol.Position{}
	}

	text := t.Line(line - 1)

	col := column - 1
	if col > len(text) {
		col = len(text)
	}
	if col < 0 {
		col = 0
	}

	return protocol.Position{
		Line:      protocol.UInteger(line - 1),
		Character: protocol.UInteger(utf16Len(text[:col])),
	}
}

// Apply returns the text with one content change applied. A change without a range replaces
// the whole document.
func (t *Text) Apply(change protocol.TextDocumentContentChangeEvent) (*Text, error) {
	if change.Range == nil {
		return NewText(change.Text), nil
	}

	start, err := t.Offset(change.Range.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start position: %w", err)
	}

	end, err := t.Offset(change.Range.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end position: %w", err)
	}

	if start > end {
		return nil, fmt.Errorf("range start %d after end %d", start, end)
	}

	var sb strings.Builder
	sb.Grow(len(t.content) - (end - start) + len(change.Text))
	sb.WriteString(t.content[:start])
	sb.WriteString(change.Text)
	sb.WriteString(t.content[end:])

	return NewText(sb.String()), nil
}

// ApplyChanges applies the content changes of a didChange notification in order. Entries of an
// unexpected type are skipped.
func ApplyChanges(content string, changes []any) (string, error) {
	t := NewText(content)

	for i, raw := range changes {
		var change protocol.TextDocumentContentChangeEvent

		switch c := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			change = c
		case protocol.TextDocumentContentChangeEventWhole:
			change = protocol.TextDocumentContentChangeEvent{Text: c.Text}
		default:
			continue
		}

		next, err := t.Apply(change)
		if err != nil {
			return content, fmt.Errorf("change %d: %w", i, err)
		}
		t = next
	}

	return t.String(), nil
}

// byteColumn converts a UTF-16 offset within line into a byte offset. An offset past the end
// of the line clamps to its end, as clients send for positions at line end.
func byteColumn(line string, utf16Offset int) (int, error) {
	if utf16Offset < 0 {
		return 0, fmt.Errorf("negative character offset %d", utf16Offset)
	}

	units := 0
	for i, r := range line {
		if units >= utf16Offset {
			return i, nil
		}
		units += runeUnits(r)
	}

	return len(line), nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
