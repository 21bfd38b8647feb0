package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

func TestFontTableAdd(t *testing.T) {
	table := NewFontTable()
	table.Add("Times-Roman", 12)
	table.Add("Helvetica", 10.04)
	table.Add("Times-Roman", 24)
	table.Add("Times-Roman", 11.96)
	table.Add("Times-Roman", 9.5)
	table.Add("Helvetica", 10)

	if diff := cmp.Diff([]string{"Times-Roman", "Helvetica"}, table.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		font string
		want FontInfo
	}{
		{"Times-Roman", FontInfo{Sizes: []float64{9.5, 12, 24}, Count: 4}},
		{"Helvetica", FontInfo{Sizes: []float64{10}, Count: 2}},
	}
	for _, tt := range tests {
		got, ok := table.Get(tt.font)
		if !ok {
			t.Fatalf("Get(%q) missing", tt.font)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Get(%q) mismatch (-want +got):\n%s", tt.font, diff)
		}
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestFontTableJSON(t *testing.T) {
	table := NewFontTable()
	table.Add("Zeta<Bold>", 14)
	table.Add("Alpha", 8)
	table.Add("Alpha", 8)

	// same encoder settings as WriteMetadata
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(table); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	// first-seen order, not sorted; no HTML escaping
	const expected = `{"Zeta<Bold>":{"sizes":[14],"count":1},"Alpha":{"sizes":[8],"count":2}}`
	if string(data) != expected {
		t.Errorf("JSON = %s, want %s", data, expected)
	}

	decoded := NewFontTable()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(table.Names(), decoded.Names()); diff != "" {
		t.Errorf("decoded names mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`[1, 2]`), decoded); err == nil {
		t.Error("json.Unmarshal() of an array should fail")
	}
}

func TestDetectFonts(t *testing.T) {
	doc := newFakeDoc(3)
	doc.pages[0].spans = []pdf.TextSpan{
		span("Title", "Playfair-Bold", 32, 0),
		span("Body", "Inter", 10.96, 0),
	}
	doc.pages[1].spans = []pdf.TextSpan{
		span("No font", "", 0, 0),
		span("Body", "Inter", 11, 0),
	}
	// fonts are tallied on every page, including those past the color sample
	doc.pages[2].spans = []pdf.TextSpan{
		span("Code", "Courier", 9, 0),
	}

	table, err := DetectFonts(doc)
	if err != nil {
		t.Fatalf("DetectFonts() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Playfair-Bold", "Inter", "unknown", "Courier"}, table.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	inter, _ := table.Get("Inter")
	if diff := cmp.Diff(FontInfo{Sizes: []float64{11}, Count: 2}, inter); diff != "" {
		t.Errorf("Inter mismatch (-want +got):\n%s", diff)
	}
	unknown, _ := table.Get("unknown")
	if diff := cmp.Diff(FontInfo{Sizes: []float64{12}, Count: 1}, unknown); diff != "" {
		t.Errorf("unknown mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectFontsEmpty(t *testing.T) {
	table, err := DetectFonts(newFakeDoc(2))
	if err != nil {
		t.Fatalf("DetectFonts() error = %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
	data, _ := json.Marshal(table)
	if string(data) != "{}" {
		t.Errorf("JSON = %s, want {}", data)
	}
}

func TestDetectFontsTextError(t *testing.T) {
	doc := newFakeDoc(2)
	doc.pages[1].textErr = errors.New("broken content")
	if _, err := DetectFonts(doc); err == nil {
		t.Error("DetectFonts() should propagate text extraction errors")
	}
}
