package pdf

import (
	"encoding/hex"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolve dereferences indirect references. Unresolvable references yield nil.
func resolve(ctx *model.Context, obj types.Object) types.Object {
	for i := 0; i < 8; i++ {
		var ref types.IndirectRef
		switch v := obj.(type) {
		case types.IndirectRef:
			ref = v
		case *types.IndirectRef:
			if v == nil {
				return nil
			}
			ref = *v
		default:
			return obj
		}
		o, err := ctx.Dereference(ref)
		if err != nil {
			return nil
		}
		obj = o
	}
	return nil
}

// resolveDict returns the dictionary behind obj. For streams the stream dictionary is returned.
func resolveDict(ctx *model.Context, obj types.Object) types.Dict {
	switch v := resolve(ctx, obj).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	case *types.StreamDict:
		return v.Dict
	}
	return nil
}

// resolveStream returns the stream behind obj, or nil if obj is not a stream
func resolveStream(ctx *model.Context, obj types.Object) *types.StreamDict {
	switch v := resolve(ctx, obj).(type) {
	case types.StreamDict:
		return &v
	case *types.StreamDict:
		return v
	}
	return nil
}

// resolveArray returns the array behind obj
func resolveArray(ctx *model.Context, obj types.Object) types.Array {
	if v, ok := resolve(ctx, obj).(types.Array); ok {
		return v
	}
	return nil
}

// indirectRef extracts the reference from obj, if it is one
func indirectRef(obj types.Object) (types.IndirectRef, bool) {
	switch v := obj.(type) {
	case types.IndirectRef:
		return v, true
	case *types.IndirectRef:
		if v != nil {
			return *v, true
		}
	}
	return types.IndirectRef{}, false
}

// decodedContent returns the decoded bytes of a stream
func decodedContent(sd *types.StreamDict) ([]byte, error) {
	if len(sd.Content) > 0 {
		return sd.Content, nil
	}
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

func numberValue(obj types.Object) (float64, bool) {
	switch v := obj.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func nameValue(obj types.Object) string {
	if n, ok := obj.(types.Name); ok {
		return string(n)
	}
	return ""
}

// stringBytes returns the unescaped bytes of a string object
func stringBytes(obj types.Object) []byte {
	switch v := obj.(type) {
	case types.StringLiteral:
		tok, err := NewLexer([]byte("(" + string(v) + ")")).NextToken()
		if err != nil {
			return []byte(v)
		}
		return tok.Bytes
	case types.HexLiteral:
		s := strings.Map(func(r rune) rune {
			if r < 128 && isHexDigit(byte(r)) {
				return r
			}
			return -1
		}, string(v))
		if len(s)%2 != 0 {
			s += "0"
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

// numberArray resolves an array of numbers; non-numeric entries become 0
func numberArray(ctx *model.Context, obj types.Object) []float64 {
	arr := resolveArray(ctx, obj)
	if arr == nil {
		return nil
	}
	out := make([]float64, len(arr))
	for i, o := range arr {
		out[i], _ = numberValue(resolve(ctx, o))
	}
	return out
}

// matrixValue reads a 6-element matrix array, defaulting to identity
func matrixValue(ctx *model.Context, obj types.Object) Matrix {
	v := numberArray(ctx, obj)
	if len(v) != 6 {
		return IdentityMatrix()
	}
	return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
}

// rectValue reads a 4-element rectangle array, normalized so X0<=X1 and Y0<=Y1
func rectValue(ctx *model.Context, obj types.Object) (BoundingBox, bool) {
	v := numberArray(ctx, obj)
	if len(v) != 4 {
		return BoundingBox{}, false
	}
	return BoundingBox{
		X0: min(v[0], v[2]),
		Y0: min(v[1], v[3]),
		X1: max(v[0], v[2]),
		Y1: max(v[1], v[3]),
	}, true
}
