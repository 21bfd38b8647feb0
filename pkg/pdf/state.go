package pdf

import "math"

// Matrix represents a 2D transformation matrix [a b c d e f].
// Points are row vectors: p' = p × M.
type Matrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix returns an identity matrix
func IdentityMatrix() Matrix {
	return Matrix{A: 1, D: 1}
}

// TranslationMatrix returns a translation by (tx, ty)
func TranslationMatrix(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// ScaleMatrix returns a scaling by (sx, sy)
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Multiply returns m × other, i.e. m applied first, then other.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.C,
		B: m.A*other.B + m.B*other.D,
		C: m.C*other.A + m.D*other.C,
		D: m.C*other.B + m.D*other.D,
		E: m.E*other.A + m.F*other.C + other.E,
		F: m.E*other.B + m.F*other.D + other.F,
	}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// TransformVector applies the linear part of the matrix to a vector
func (m Matrix) TransformVector(x, y float64) (float64, float64) {
	return m.A*x + m.C*y, m.B*x + m.D*y
}

// Expansion returns the mean scale factor of the matrix
func (m Matrix) Expansion() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// Invert returns the inverse matrix, or false if m is singular
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return Matrix{}, false
	}
	inv := Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}
	inv.E = -(m.E*inv.A + m.F*inv.C)
	inv.F = -(m.E*inv.B + m.F*inv.D)
	return inv, true
}

// GraphicsState represents the PDF graphics state, including the text state parameters
type GraphicsState struct {
	CTM Matrix // Current Transformation Matrix

	FillColor   Color
	StrokeColor Color
	FillSpace   *ColorSpace
	StrokeSpace *ColorSpace

	LineWidth float64

	// Text state
	Font       *FontInfo
	FontSize   float64
	CharSpace  float64
	WordSpace  float64
	HScale     float64 // percent
	Leading    float64
	TextRise   float64
	RenderMode int
}

// NewGraphicsState creates a new graphics state with defaults
func NewGraphicsState(ctm Matrix) *GraphicsState {
	return &GraphicsState{
		CTM:         ctm,
		FillSpace:   DeviceGray,
		StrokeSpace: DeviceGray,
		LineWidth:   1,
		FontSize:    12,
		HScale:      100,
	}
}

// Clone creates a copy of the graphics state
func (gs *GraphicsState) Clone() *GraphicsState {
	newState := *gs
	return &newState
}

// StateStack manages graphics state stack for save/restore operations
type StateStack struct {
	states []*GraphicsState
}

// NewStateStack creates a new state stack rooted at the given CTM
func NewStateStack(ctm Matrix) *StateStack {
	return &StateStack{
		states: []*GraphicsState{NewGraphicsState(ctm)},
	}
}

// Current returns the current graphics state
func (s *StateStack) Current() *GraphicsState {
	return s.states[len(s.states)-1]
}

// Save saves the current graphics state
func (s *StateStack) Save() {
	s.states = append(s.states, s.Current().Clone())
}

// Restore restores the previous graphics state. Unbalanced Q operators are ignored.
func (s *StateStack) Restore() {
	if len(s.states) > 1 {
		s.states = s.states[:len(s.states)-1]
	}
}

// Depth returns the number of saved states
func (s *StateStack) Depth() int {
	return len(s.states) - 1
}

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// PathOp is a path construction operation
type PathOp int

const (
	PathMoveTo PathOp = iota
	PathLineTo
	PathCurveTo
	PathClose
)

// PathElement represents an element in a path.
// PathCurveTo carries three points (two control points and the end point).
type PathElement struct {
	Op     PathOp
	Points []Point
}

// Path is a sequence of path elements in user space
type Path []PathElement
