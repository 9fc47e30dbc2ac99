package printdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms-console/internal/model"
)

func records() []model.QRRecord {
	return []model.QRRecord{
		model.NewQRRecord("b1", &model.Bin{BinCode: "BIN-1", GeneratedCode: "GC-1"}, []byte("one"), "image/png"),
		model.NewQRRecord("b2", &model.Bin{BinCode: "BIN-2", GeneratedCode: "GC-2"}, []byte("two"), "image/png"),
	}
}

func TestBatchLayout(t *testing.T) {
	out, err := Batch(records(), BatchOptions{AutoPrint: true})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Print 2 QR Codes</title>")
	assert.Contains(t, html, "QR CODES - 2 BINS")
	assert.Contains(t, html, "Bin: BIN-1")
	assert.Contains(t, html, "Name: GC-2")
	assert.Contains(t, html, "Scans: ID:b1|Name:GC-1")
	assert.Contains(t, html, `src="data:image/png;base64,b25l"`)
	assert.Contains(t, html, `onload="window.print();window.close();"`)
	assert.Equal(t, 2, strings.Count(html, `class="qr-card"`))
}

func TestBatchWithoutAutoPrint(t *testing.T) {
	out, err := Batch(nil, BatchOptions{})
	require.NoError(t, err)

	assert.Contains(t, string(out), "QR CODES - 0 BINS")
	assert.NotContains(t, string(out), "window.print")
}

func TestBatchEscapesFields(t *testing.T) {
	rec := model.NewQRRecord("x", &model.Bin{BinCode: `<script>alert(1)</script>`, GeneratedCode: "a&b"}, nil, "")
	out, err := Batch([]model.QRRecord{rec}, BatchOptions{})
	require.NoError(t, err)

	html := string(out)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "a&amp;b")
}

func TestSingleView(t *testing.T) {
	out, err := Single(records()[0])
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>QR: BIN-1</title>")
	assert.Contains(t, html, "<strong>Name:</strong> GC-1")
	assert.Contains(t, html, "ID:b1<br>Name:GC-1")
	assert.Contains(t, html, `onclick="window.print()"`)
	assert.Contains(t, html, "Print This QR")
}
