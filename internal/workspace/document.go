package workspace

// Encoding identifies how a document's bytes are encoded on disk.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-bom"
)

// LineEnding identifies the dominant line terminator used on disk.
type LineEnding string

const (
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
)

// DocID is the stable identifier of a document: its path relative to the
// workspace root, with forward slashes.
type DocID string

// Document is one source file's versioned text content plus identity.
// Text is an immutable snapshot normalized to LF line endings with any byte
// order mark stripped; the Encoding and LineEnding fields record how the
// document looked on disk so it can be written back unchanged in form.
// Edits never mutate Text in place; WithText produces a new snapshot.
type Document struct {
	ID         DocID
	Text       string
	Encoding   Encoding
	LineEnding LineEnding
}

// WithText returns a new snapshot with the same identity and on-disk
// metadata but replacement text.
func (d Document) WithText(text string) Document {
	d.Text = text
	return d
}

// Bytes renders the document for disk: the BOM is re-attached and LF is
// expanded back to CRLF when the document used those forms originally.
func (d Document) Bytes() []byte {
	text := d.Text
	if d.LineEnding == LineEndingCRLF {
		text = expandCRLF(text)
	}
	if d.Encoding == EncodingUTF8BOM {
		return append([]byte{0xEF, 0xBB, 0xBF}, text...)
	}
	return []byte(text)
}

// expandCRLF rewrites every LF not already preceded by CR as CRLF.
func expandCRLF(text string) string {
	buf := make([]byte, 0, len(text)+len(text)/16)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && (i == 0 || text[i-1] != '\r') {
			buf = append(buf, '\r')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
