package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxFormDepth bounds Form XObject nesting
const maxFormDepth = 12

// ContentStreamParser interprets PDF content streams and reports what they paint to a Device
type ContentStreamParser struct {
	ctx    *model.Context
	device Device

	stack *StateStack

	// Text object state
	textMatrix Matrix
	lineMatrix Matrix

	// Current path
	path         Path
	current      Point
	subpathStart Point

	// Resources of the stream being interpreted
	resources types.Dict
	fonts     map[string]*FontInfo

	// fontCache is shared across resource dictionaries, keyed by object number
	fontCache map[int]*FontInfo
	forms     map[int]bool
	depth     int
}

// NewContentStreamParser creates a new content stream parser. ctm is the initial
// transformation from user space to the device's space.
func NewContentStreamParser(ctx *model.Context, resources types.Dict, device Device, ctm Matrix) *ContentStreamParser {
	return &ContentStreamParser{
		ctx:        ctx,
		device:     device,
		stack:      NewStateStack(ctm),
		textMatrix: IdentityMatrix(),
		lineMatrix: IdentityMatrix(),
		resources:  resources,
		fonts:      make(map[string]*FontInfo),
		fontCache:  make(map[int]*FontInfo),
		forms:      make(map[int]bool),
	}
}

// Parse interprets a content stream
func (p *ContentStreamParser) Parse(content []byte) error {
	lex := NewLexer(content)
	var operands []Token

	for {
		tok, err := lex.NextToken()
		if err != nil {
			return fmt.Errorf("failed to tokenize content stream at offset %d: %w", lex.Position(), err)
		}

		switch tok.Type {
		case TokenEOF:
			return nil
		case TokenArrayStart:
			arr, err := readArray(lex)
			if err != nil {
				return err
			}
			operands = append(operands, arr)
		case TokenDictStart:
			// marked-content property lists; the contents are not needed
			if err := skipDict(lex); err != nil {
				return err
			}
			operands = append(operands, Token{Type: TokenDictStart})
		case TokenArrayEnd, TokenDictEnd:
			// unbalanced delimiter, drop it
		case TokenKeyword:
			op := tok.Keyword()
			switch op {
			case "true", "false", "null":
				operands = append(operands, tok)
				continue
			case "BI":
				if err := skipInlineImage(lex); err != nil {
					return err
				}
				operands = operands[:0]
				continue
			}
			if err := p.processOperator(op, operands); err != nil {
				return err
			}
			operands = operands[:0]
		default:
			operands = append(operands, tok)
		}
	}
}

func readArray(lex *Lexer) (Token, error) {
	arr := Token{Type: TokenArray}
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return arr, err
		}
		switch tok.Type {
		case TokenEOF, TokenArrayEnd:
			return arr, nil
		case TokenArrayStart:
			inner, err := readArray(lex)
			if err != nil {
				return arr, err
			}
			arr.Array = append(arr.Array, inner)
		case TokenDictStart:
			if err := skipDict(lex); err != nil {
				return arr, err
			}
		default:
			arr.Array = append(arr.Array, tok)
		}
	}
}

func skipDict(lex *Lexer) error {
	depth := 1
	for depth > 0 {
		tok, err := lex.NextToken()
		if err != nil {
			return err
		}
		switch tok.Type {
		case TokenEOF:
			return nil
		case TokenDictStart:
			depth++
		case TokenDictEnd:
			depth--
		}
	}
	return nil
}

// skipInlineImage skips a BI ... ID <data> EI sequence
func skipInlineImage(lex *Lexer) error {
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == TokenEOF {
			return nil
		}
		if tok.Keyword() == "ID" {
			// a truncated inline image ends the stream, which is what EOF does anyway
			_ = lex.SkipInlineImage()
			return nil
		}
	}
}

// processOperator processes a PDF operator with its operands
func (p *ContentStreamParser) processOperator(operator string, operands []Token) error {
	switch operator {
	// Text object operators
	case "BT":
		p.beginText()
	case "ET":
		// Text object ended

	// Text positioning
	case "Td":
		p.textMoveBy(operands)
	case "TD":
		p.textMoveByWithLeading(operands)
	case "Tm":
		p.setTextMatrix(operands)
	case "T*":
		p.textNextLine()

	// Text showing
	case "Tj":
		p.showText(operands)
	case "TJ":
		p.showTextArray(operands)
	case "'":
		p.textNextLine()
		p.showText(operands)
	case "\"":
		p.textNextLineShowWithSpacing(operands)

	// Text state
	case "Tc":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().CharSpace = v[0]
		}
	case "Tw":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().WordSpace = v[0]
		}
	case "Tz":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().HScale = v[0]
		}
	case "TL":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().Leading = v[0]
		}
	case "Tf":
		p.setFont(operands)
	case "Tr":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().RenderMode = int(v[0])
		}
	case "Ts":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().TextRise = v[0]
		}

	// Graphics state
	case "q":
		p.stack.Save()
	case "Q":
		p.stack.Restore()
	case "cm":
		p.concatenateMatrix(operands)
	case "w":
		if v, ok := lastNumbers(operands, 1); ok {
			p.stack.Current().LineWidth = v[0]
		}
	case "gs":
		p.setExtGState(operands)

	// Path construction
	case "m":
		p.moveTo(operands)
	case "l":
		p.lineTo(operands)
	case "c":
		p.curveTo(operands)
	case "v":
		p.curveToV(operands)
	case "y":
		p.curveToY(operands)
	case "h":
		p.closePath()
	case "re":
		p.rectangle(operands)

	// Path painting
	case "S":
		p.paint(false, true, false)
	case "s":
		p.closePath()
		p.paint(false, true, false)
	case "f", "F":
		p.paint(true, false, false)
	case "f*":
		p.paint(true, false, true)
	case "B":
		p.paint(true, true, false)
	case "B*":
		p.paint(true, true, true)
	case "b":
		p.closePath()
		p.paint(true, true, false)
	case "b*":
		p.closePath()
		p.paint(true, true, true)
	case "n":
		p.path = nil

	// Color operators
	case "g":
		p.setFillColor(DeviceGray, operands)
	case "G":
		p.setStrokeColor(DeviceGray, operands)
	case "rg":
		p.setFillColor(DeviceRGB, operands)
	case "RG":
		p.setStrokeColor(DeviceRGB, operands)
	case "k":
		p.setFillColor(DeviceCMYK, operands)
	case "K":
		p.setStrokeColor(DeviceCMYK, operands)
	case "cs":
		p.setFillColorSpace(operands)
	case "CS":
		p.setStrokeColorSpace(operands)
	case "sc", "scn":
		p.setFillColor(p.stack.Current().FillSpace, operands)
	case "SC", "SCN":
		p.setStrokeColor(p.stack.Current().StrokeSpace, operands)

	// XObjects
	case "Do":
		return p.doXObject(operands)
	}
	return nil
}

// lastNumbers returns the trailing n numeric operands
func lastNumbers(operands []Token, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, tok := range operands[len(operands)-n:] {
		if tok.Type != TokenNumber {
			return nil, false
		}
		out[i] = tok.Num
	}
	return out, true
}

// numbers returns all numeric operands
func numbers(operands []Token) []float64 {
	var out []float64
	for _, tok := range operands {
		if tok.Type == TokenNumber {
			out = append(out, tok.Num)
		}
	}
	return out
}

func lastName(operands []Token) (string, bool) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].Type == TokenName {
			return string(operands[i].Bytes), true
		}
	}
	return "", false
}

// Text object operators

func (p *ContentStreamParser) beginText() {
	p.textMatrix = IdentityMatrix()
	p.lineMatrix = IdentityMatrix()
}

// Text positioning operators

func (p *ContentStreamParser) textMoveBy(operands []Token) {
	v, ok := lastNumbers(operands, 2)
	if !ok {
		return
	}
	p.lineMatrix = TranslationMatrix(v[0], v[1]).Multiply(p.lineMatrix)
	p.textMatrix = p.lineMatrix
}

func (p *ContentStreamParser) textMoveByWithLeading(operands []Token) {
	v, ok := lastNumbers(operands, 2)
	if !ok {
		return
	}
	p.stack.Current().Leading = -v[1]
	p.textMoveBy(operands)
}

func (p *ContentStreamParser) setTextMatrix(operands []Token) {
	v, ok := lastNumbers(operands, 6)
	if !ok {
		return
	}
	p.textMatrix = Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
	p.lineMatrix = p.textMatrix
}

func (p *ContentStreamParser) textNextLine() {
	p.lineMatrix = TranslationMatrix(0, -p.stack.Current().Leading).Multiply(p.lineMatrix)
	p.textMatrix = p.lineMatrix
}

func (p *ContentStreamParser) textNextLineShowWithSpacing(operands []Token) {
	if len(operands) < 3 {
		return
	}
	gs := p.stack.Current()
	if operands[0].Type == TokenNumber {
		gs.WordSpace = operands[0].Num
	}
	if operands[1].Type == TokenNumber {
		gs.CharSpace = operands[1].Num
	}
	p.textNextLine()
	p.showText(operands[2:])
}

// Text showing operators

func (p *ContentStreamParser) showText(operands []Token) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].IsString() {
			p.showString(operands[i].Bytes)
			return
		}
	}
}

func (p *ContentStreamParser) showTextArray(operands []Token) {
	if len(operands) == 0 || operands[len(operands)-1].Type != TokenArray {
		return
	}
	gs := p.stack.Current()
	for _, item := range operands[len(operands)-1].Array {
		switch {
		case item.IsString():
			p.showString(item.Bytes)
		case item.Type == TokenNumber:
			tx := -item.Num / 1000 * gs.FontSize * gs.HScale / 100
			p.textMatrix = TranslationMatrix(tx, 0).Multiply(p.textMatrix)
		}
	}
}

// showString emits one glyph per character code and advances the text matrix
func (p *ContentStreamParser) showString(s []byte) {
	gs := p.stack.Current()
	font := gs.Font
	if font == nil {
		font = fallbackFont
	}
	th := gs.HScale / 100

	name := font.BaseFont
	if name == "" && gs.Font != nil {
		name = font.Name
	}
	flags := font.SpanFlags()
	if gs.TextRise > 0 {
		flags |= FlagSuperscript
	}
	color := gs.FillColor
	if gs.RenderMode == 1 || gs.RenderMode == 5 {
		color = gs.StrokeColor
	}

	for _, cc := range font.decode(s) {
		trm := Matrix{A: gs.FontSize * th, D: gs.FontSize, F: gs.TextRise}.
			Multiply(p.textMatrix).
			Multiply(gs.CTM)

		p.device.ShowGlyph(Glyph{
			Text:       cc.text,
			Font:       gs.Font,
			FontName:   name,
			Flags:      flags,
			Trm:        trm,
			Width:      cc.width,
			Color:      color,
			RenderMode: gs.RenderMode,
		})

		tx := cc.width*gs.FontSize + gs.CharSpace
		if cc.space {
			tx += gs.WordSpace
		}
		p.textMatrix = TranslationMatrix(tx*th, 0).Multiply(p.textMatrix)
	}
}

// fallbackFont is used for text shown before any Tf
var fallbackFont = &FontInfo{DefaultWidth: 0.5, Ascent: 0.8, Descent: -0.2}

func (p *ContentStreamParser) setFont(operands []Token) {
	gs := p.stack.Current()
	if v, ok := lastNumbers(operands, 1); ok {
		gs.FontSize = v[0]
	}
	name, ok := lastName(operands)
	if !ok {
		return
	}
	gs.Font = p.font(name)
}

// font looks up a font resource by name
func (p *ContentStreamParser) font(name string) *FontInfo {
	if f, ok := p.fonts[name]; ok {
		return f
	}
	fontDict := resolveDict(p.ctx, p.resources["Font"])
	obj, ok := fontDict[name]
	if !ok {
		p.fonts[name] = nil
		return nil
	}

	ref, isRef := indirectRef(obj)
	if isRef {
		if f, ok := p.fontCache[int(ref.ObjectNumber)]; ok {
			p.fonts[name] = f
			return f
		}
	}

	var f *FontInfo
	if d := resolveDict(p.ctx, obj); d != nil {
		f = loadFont(p.ctx, name, d)
	}
	if isRef {
		p.fontCache[int(ref.ObjectNumber)] = f
	}
	p.fonts[name] = f
	return f
}

// Graphics state operators

func (p *ContentStreamParser) concatenateMatrix(operands []Token) {
	v, ok := lastNumbers(operands, 6)
	if !ok {
		return
	}
	gs := p.stack.Current()
	gs.CTM = Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}.Multiply(gs.CTM)
}

func (p *ContentStreamParser) setExtGState(operands []Token) {
	name, ok := lastName(operands)
	if !ok {
		return
	}
	states := resolveDict(p.ctx, p.resources["ExtGState"])
	gsDict := resolveDict(p.ctx, states[name])
	if gsDict == nil {
		return
	}
	if lw, ok := numberValue(resolve(p.ctx, gsDict["LW"])); ok {
		p.stack.Current().LineWidth = lw
	}
	if fontArr := resolveArray(p.ctx, gsDict["Font"]); len(fontArr) == 2 {
		if d := resolveDict(p.ctx, fontArr[0]); d != nil {
			p.stack.Current().Font = loadFont(p.ctx, name, d)
		}
		if size, ok := numberValue(resolve(p.ctx, fontArr[1])); ok {
			p.stack.Current().FontSize = size
		}
	}
}

// Path construction operators

func (p *ContentStreamParser) moveTo(operands []Token) {
	v, ok := lastNumbers(operands, 2)
	if !ok {
		return
	}
	pt := Point{X: v[0], Y: v[1]}
	p.path = append(p.path, PathElement{Op: PathMoveTo, Points: []Point{pt}})
	p.current, p.subpathStart = pt, pt
}

func (p *ContentStreamParser) lineTo(operands []Token) {
	v, ok := lastNumbers(operands, 2)
	if !ok {
		return
	}
	pt := Point{X: v[0], Y: v[1]}
	p.path = append(p.path, PathElement{Op: PathLineTo, Points: []Point{pt}})
	p.current = pt
}

func (p *ContentStreamParser) curveTo(operands []Token) {
	v, ok := lastNumbers(operands, 6)
	if !ok {
		return
	}
	p.appendCurve(Point{v[0], v[1]}, Point{v[2], v[3]}, Point{v[4], v[5]})
}

func (p *ContentStreamParser) curveToV(operands []Token) {
	v, ok := lastNumbers(operands, 4)
	if !ok {
		return
	}
	p.appendCurve(p.current, Point{v[0], v[1]}, Point{v[2], v[3]})
}

func (p *ContentStreamParser) curveToY(operands []Token) {
	v, ok := lastNumbers(operands, 4)
	if !ok {
		return
	}
	end := Point{v[2], v[3]}
	p.appendCurve(Point{v[0], v[1]}, end, end)
}

func (p *ContentStreamParser) appendCurve(c1, c2, end Point) {
	p.path = append(p.path, PathElement{Op: PathCurveTo, Points: []Point{c1, c2, end}})
	p.current = end
}

func (p *ContentStreamParser) closePath() {
	if len(p.path) == 0 {
		return
	}
	p.path = append(p.path, PathElement{Op: PathClose})
	p.current = p.subpathStart
}

func (p *ContentStreamParser) rectangle(operands []Token) {
	v, ok := lastNumbers(operands, 4)
	if !ok {
		return
	}
	x, y, w, h := v[0], v[1], v[2], v[3]
	p.path = append(p.path,
		PathElement{Op: PathMoveTo, Points: []Point{{x, y}}},
		PathElement{Op: PathLineTo, Points: []Point{{x + w, y}}},
		PathElement{Op: PathLineTo, Points: []Point{{x + w, y + h}}},
		PathElement{Op: PathLineTo, Points: []Point{{x, y + h}}},
		PathElement{Op: PathClose},
	)
	p.current, p.subpathStart = Point{x, y}, Point{x, y}
}

// paint hands the current path to the device and clears it
func (p *ContentStreamParser) paint(fill, stroke, evenOdd bool) {
	path := p.path
	p.path = nil
	if len(path) == 0 {
		return
	}
	gs := p.stack.Current()
	if fill && gs.FillSpace.Family != FamilyPattern {
		p.device.FillPath(path, gs.CTM, gs.FillColor, evenOdd)
	}
	if stroke && gs.StrokeSpace.Family != FamilyPattern {
		p.device.StrokePath(path, gs.CTM, gs.StrokeColor, gs.LineWidth)
	}
}

// Color operators

func (p *ContentStreamParser) setFillColor(cs *ColorSpace, operands []Token) {
	gs := p.stack.Current()
	gs.FillSpace = cs
	if cs.Family == FamilyPattern {
		return
	}
	gs.FillColor = cs.Convert(numbers(operands))
}

func (p *ContentStreamParser) setStrokeColor(cs *ColorSpace, operands []Token) {
	gs := p.stack.Current()
	gs.StrokeSpace = cs
	if cs.Family == FamilyPattern {
		return
	}
	gs.StrokeColor = cs.Convert(numbers(operands))
}

func (p *ContentStreamParser) setFillColorSpace(operands []Token) {
	name, ok := lastName(operands)
	if !ok {
		return
	}
	cs := resolveColorSpace(p.ctx, types.Name(name), p.resources)
	gs := p.stack.Current()
	gs.FillSpace = cs
	gs.FillColor = cs.Initial()
}

func (p *ContentStreamParser) setStrokeColorSpace(operands []Token) {
	name, ok := lastName(operands)
	if !ok {
		return
	}
	cs := resolveColorSpace(p.ctx, types.Name(name), p.resources)
	gs := p.stack.Current()
	gs.StrokeSpace = cs
	gs.StrokeColor = cs.Initial()
}

// XObjects

func (p *ContentStreamParser) doXObject(operands []Token) error {
	name, ok := lastName(operands)
	if !ok {
		return nil
	}
	xobjects := resolveDict(p.ctx, p.resources["XObject"])
	obj, ok := xobjects[name]
	if !ok {
		return nil
	}
	sd := resolveStream(p.ctx, obj)
	if sd == nil {
		return nil
	}
	ref, _ := indirectRef(obj)

	switch nameValue(resolve(p.ctx, sd.Dict["Subtype"])) {
	case "Image":
		p.device.DrawImage(ImageRef{ObjNr: int(ref.ObjectNumber), Name: name, ref: ref}, p.stack.Current().CTM)
		return nil
	case "Form":
		return p.runForm(sd, int(ref.ObjectNumber))
	}
	return nil
}

// runForm interprets a Form XObject with its own matrix and resources
func (p *ContentStreamParser) runForm(sd *types.StreamDict, objNr int) error {
	if p.depth >= maxFormDepth || (objNr > 0 && p.forms[objNr]) {
		return nil
	}
	content, err := decodedContent(sd)
	if err != nil {
		return fmt.Errorf("failed to decode form xobject %d: %w", objNr, err)
	}

	resources := resolveDict(p.ctx, sd.Dict["Resources"])
	if resources == nil {
		resources = p.resources
	}

	savedResources, savedFonts := p.resources, p.fonts
	savedText, savedLine := p.textMatrix, p.lineMatrix
	savedPath := p.path
	depth := p.stack.Depth()

	p.stack.Save()
	gs := p.stack.Current()
	gs.CTM = matrixValue(p.ctx, sd.Dict["Matrix"]).Multiply(gs.CTM)
	p.resources, p.fonts = resources, make(map[string]*FontInfo)
	p.path = nil
	if objNr > 0 {
		p.forms[objNr] = true
	}
	p.depth++

	err = p.Parse(content)

	p.depth--
	if objNr > 0 {
		delete(p.forms, objNr)
	}
	for p.stack.Depth() > depth {
		p.stack.Restore()
	}
	p.resources, p.fonts = savedResources, savedFonts
	p.textMatrix, p.lineMatrix = savedText, savedLine
	p.path = savedPath

	if err != nil {
		return fmt.Errorf("form xobject %d: %w", objNr, err)
	}
	return nil
}
