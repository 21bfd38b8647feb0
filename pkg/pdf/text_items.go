package pdf

// textItem is a positioned run of text as reported by the alternate backends.
// x and y are the baseline origin in PDF user space.
type textItem struct {
	font string
	size float64
	x, y float64
	w    float64
	s    string
}

// layoutTextItems groups backend text runs with the same rules as the content stream extractor.
// The backends report neither color nor font descriptors, so spans are black and
// style flags come from the font name only.
func layoutTextItems(items []textItem, pageMatrix Matrix, unicodeNorm string) []TextBlock {
	dev := NewTextDevice(unicodeNorm)
	for _, it := range items {
		if it.s == "" || it.size <= 0 {
			continue
		}
		name := StripSubsetTag(it.font)
		runes := []rune(it.s)
		advance := it.w / float64(len(runes))
		x := it.x
		for _, r := range runes {
			trm := Matrix{A: it.size, D: it.size, E: x, F: it.y}.Multiply(pageMatrix)
			dev.ShowGlyph(Glyph{
				Text:     string(r),
				FontName: name,
				Flags:    styleFlags(name, 0, 0),
				Trm:      trm,
				Width:    advance / it.size,
			})
			x += advance
		}
	}
	blocks := dev.Blocks()
	if blocks == nil {
		blocks = []TextBlock{}
	}
	return blocks
}
