package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ColorSpaceFamily is the kind of a color space, reduced to what the
// interpreter needs to turn operands into RGB
type ColorSpaceFamily int

const (
	FamilyGray ColorSpaceFamily = iota
	FamilyRGB
	FamilyCMYK
	FamilySeparation
	FamilyIndexed
	FamilyPattern
)

// ColorSpace describes how color operands are converted to RGB
type ColorSpace struct {
	Family ColorSpaceFamily

	// Indexed only
	base   *ColorSpace
	hival  int
	lookup []byte
}

// Device color spaces
var (
	DeviceGray = &ColorSpace{Family: FamilyGray}
	DeviceRGB  = &ColorSpace{Family: FamilyRGB}
	DeviceCMYK = &ColorSpace{Family: FamilyCMYK}
)

// Components returns the number of operands sc/scn expects
func (cs *ColorSpace) Components() int {
	switch cs.Family {
	case FamilyRGB:
		return 3
	case FamilyCMYK:
		return 4
	default:
		return 1
	}
}

// Initial returns the initial color set by cs/CS: black, or entry 0 of an indexed space
func (cs *ColorSpace) Initial() Color {
	if cs.Family == FamilyIndexed {
		return cs.Convert([]float64{0})
	}
	return Color{}
}

// Convert maps operands in cs to RGB. Missing operands count as 0.
func (cs *ColorSpace) Convert(v []float64) Color {
	at := func(i int) float64 {
		if i < len(v) {
			return clamp01(v[i])
		}
		return 0
	}
	switch cs.Family {
	case FamilyGray:
		g := at(0)
		return Color{R: g, G: g, B: g}
	case FamilyRGB:
		return Color{R: at(0), G: at(1), B: at(2)}
	case FamilyCMYK:
		return cmykToRGB(at(0), at(1), at(2), at(3))
	case FamilySeparation:
		g := 1 - at(0)
		return Color{R: g, G: g, B: g}
	case FamilyIndexed:
		idx := 0
		if len(v) > 0 {
			idx = int(v[0])
		}
		return cs.lookupColor(idx)
	}
	return Color{}
}

func (cs *ColorSpace) lookupColor(idx int) Color {
	if idx < 0 {
		idx = 0
	}
	if idx > cs.hival {
		idx = cs.hival
	}
	n := cs.base.Components()
	off := idx * n
	if off+n > len(cs.lookup) {
		return Color{}
	}
	comps := make([]float64, n)
	for i := 0; i < n; i++ {
		comps[i] = float64(cs.lookup[off+i]) / 255
	}
	return cs.base.Convert(comps)
}

func cmykToRGB(c, m, y, k float64) Color {
	return Color{
		R: (1 - c) * (1 - k),
		G: (1 - m) * (1 - k),
		B: (1 - y) * (1 - k),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// resolveColorSpace turns a color space operand or resource entry into a ColorSpace.
// Unknown spaces are treated by component count where possible, else as gray.
func resolveColorSpace(ctx *model.Context, obj types.Object, resources types.Dict) *ColorSpace {
	obj = resolve(ctx, obj)
	switch v := obj.(type) {
	case types.Name:
		switch string(v) {
		case "DeviceGray", "G", "CalGray":
			return DeviceGray
		case "DeviceRGB", "RGB", "CalRGB":
			return DeviceRGB
		case "DeviceCMYK", "CMYK":
			return DeviceCMYK
		case "Pattern":
			return &ColorSpace{Family: FamilyPattern}
		}
		// a named resource
		if csDict := resolveDict(ctx, resources["ColorSpace"]); csDict != nil {
			if entry, ok := csDict[string(v)]; ok {
				return resolveColorSpace(ctx, entry, nil)
			}
		}
	case types.Array:
		if len(v) == 0 {
			return DeviceGray
		}
		family := nameValue(resolve(ctx, v[0]))
		switch family {
		case "CalGray":
			return DeviceGray
		case "CalRGB", "Lab":
			return DeviceRGB
		case "ICCBased":
			if len(v) > 1 {
				if sd := resolveStream(ctx, v[1]); sd != nil {
					if n, ok := numberValue(resolve(ctx, sd.Dict["N"])); ok {
						switch int(n) {
						case 3:
							return DeviceRGB
						case 4:
							return DeviceCMYK
						}
					}
				}
			}
			return DeviceGray
		case "Separation", "DeviceN":
			return &ColorSpace{Family: FamilySeparation}
		case "Pattern":
			return &ColorSpace{Family: FamilyPattern}
		case "Indexed", "I":
			if len(v) < 4 {
				return DeviceGray
			}
			base := resolveColorSpace(ctx, v[1], resources)
			hival, _ := numberValue(resolve(ctx, v[2]))
			return &ColorSpace{
				Family: FamilyIndexed,
				base:   base,
				hival:  int(hival),
				lookup: lookupBytes(ctx, v[3]),
			}
		}
	}
	return DeviceGray
}

func lookupBytes(ctx *model.Context, obj types.Object) []byte {
	obj = resolve(ctx, obj)
	switch v := obj.(type) {
	case types.StringLiteral, types.HexLiteral:
		return stringBytes(v)
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil
		}
		return v.Content
	}
	return nil
}
