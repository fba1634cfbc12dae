package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithText_KeepsIdentityAndMetadata(t *testing.T) {
	d := Document{ID: "a.txt", Text: "old", Encoding: EncodingUTF8BOM, LineEnding: LineEndingCRLF}
	e := d.WithText("new")
	assert.Equal(t, DocID("a.txt"), e.ID)
	assert.Equal(t, "new", e.Text)
	assert.Equal(t, EncodingUTF8BOM, e.Encoding)
	assert.Equal(t, LineEndingCRLF, e.LineEnding)
	assert.Equal(t, "old", d.Text, "the receiver is a value; it must not change")
}

func TestBytes_PlainUTF8LF_Unchanged(t *testing.T) {
	d := Document{Text: "line\n", Encoding: EncodingUTF8, LineEnding: LineEndingLF}
	assert.Equal(t, []byte("line\n"), d.Bytes())
}

func TestBytes_RestoresBOM(t *testing.T) {
	d := Document{Text: "line\n", Encoding: EncodingUTF8BOM, LineEnding: LineEndingLF}
	assert.Equal(t, append([]byte{0xEF, 0xBB, 0xBF}, "line\n"...), d.Bytes())
}

func TestBytes_RestoresCRLF(t *testing.T) {
	d := Document{Text: "one\ntwo\n", Encoding: EncodingUTF8, LineEnding: LineEndingCRLF}
	assert.Equal(t, []byte("one\r\ntwo\r\n"), d.Bytes())
}

func TestBytes_DoesNotDoubleExistingCR(t *testing.T) {
	d := Document{Text: "one\r\ntwo\n", Encoding: EncodingUTF8, LineEnding: LineEndingCRLF}
	assert.Equal(t, []byte("one\r\ntwo\r\n"), d.Bytes())
}
