package typeface

import (
	"encoding/binary"
	"fmt"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// Minimum lengths of the fixed-size table headers.
const (
	headLength = 54
	hheaLength = 36
	postLength = 32
)

// Offsets of header fields that go-text parses but does not export.
const (
	headVersion      = 0
	headFontRevision = 4
	headMagicNumber  = 12
	headFlags        = 16
	headCreated      = 20
	headModified     = 28

	postVersion     = 0
	postItalicAngle = 4
)

// checkLength returns a TableError when data is shorter than n bytes.
func checkLength(tag Tag, data []byte, n int) error {
	if len(data) < n {
		return &TableError{Tag: tag, Err: ErrTableTooShort}
	}
	return nil
}

// HeadTable is a read-only view of an OpenType 'head' table.
type HeadTable struct {
	head tables.Head
	data []byte
}

// NewHeadTable parses raw 'head' table data.
func NewHeadTable(data []byte) (*HeadTable, error) {
	if err := checkLength(TagHead, data, headLength); err != nil {
		return nil, err
	}
	head, _, err := tables.ParseHead(data)
	if err != nil {
		return nil, &TableError{Tag: TagHead, Err: fmt.Errorf("%w: %v", ErrTableMalformed, err)}
	}
	return &HeadTable{head: head, data: data}, nil
}

// Version returns the table version as 16.16 fixed point (0x00010000).
func (h *HeadTable) Version() int32 {
	return int32(binary.BigEndian.Uint32(h.data[headVersion:]))
}

// FontRevision returns the font revision set by the manufacturer, 16.16
// fixed point.
func (h *HeadTable) FontRevision() int32 {
	return int32(binary.BigEndian.Uint32(h.data[headFontRevision:]))
}

// MagicNumber returns the magic number, 0x5F0F3CF5 in valid fonts.
func (h *HeadTable) MagicNumber() uint32 {
	return binary.BigEndian.Uint32(h.data[headMagicNumber:])
}

// Flags returns the head flags bit field.
func (h *HeadTable) Flags() uint16 {
	return binary.BigEndian.Uint16(h.data[headFlags:])
}

// Created returns the creation date in seconds since 1904-01-01 00:00 UTC.
func (h *HeadTable) Created() int64 {
	return int64(binary.BigEndian.Uint64(h.data[headCreated:]))
}

// Modified returns the modification date in seconds since
// 1904-01-01 00:00 UTC.
func (h *HeadTable) Modified() int64 {
	return int64(binary.BigEndian.Uint64(h.data[headModified:]))
}

// UnitsPerEm returns the design units per em, as stored in the font.
func (h *HeadTable) UnitsPerEm() uint16 { return h.head.UnitsPerEm }

// XMin returns the minimum x of all glyph bounding boxes, in font units.
func (h *HeadTable) XMin() int16 { return h.head.XMin }

// YMin returns the minimum y of all glyph bounding boxes, in font units.
func (h *HeadTable) YMin() int16 { return h.head.YMin }

// XMax returns the maximum x of all glyph bounding boxes, in font units.
func (h *HeadTable) XMax() int16 { return h.head.XMax }

// YMax returns the maximum y of all glyph bounding boxes, in font units.
func (h *HeadTable) YMax() int16 { return h.head.YMax }

// MacStyle returns the style bits (bold, italic, ...).
func (h *HeadTable) MacStyle() uint16 { return h.head.MacStyle }

// IndexToLocFormat returns 0 for short and 1 for long 'loca' offsets.
func (h *HeadTable) IndexToLocFormat() int16 { return h.head.IndexToLocFormat }

// HheaTable is a read-only view of an OpenType 'hhea' table.
// All distances are in font units.
type HheaTable struct {
	hhea tables.Hhea
}

// NewHheaTable parses raw 'hhea' table data.
func NewHheaTable(data []byte) (*HheaTable, error) {
	if err := checkLength(TagHhea, data, hheaLength); err != nil {
		return nil, err
	}
	hhea, _, err := tables.ParseHhea(data)
	if err != nil {
		return nil, &TableError{Tag: TagHhea, Err: fmt.Errorf("%w: %v", ErrTableMalformed, err)}
	}
	return &HheaTable{hhea: hhea}, nil
}

// Ascender returns the distance from the baseline to the highest ascender.
func (h *HheaTable) Ascender() int16 { return h.hhea.Ascender }

// Descender returns the distance from the baseline to the lowest
// descender. It is negative for descenders below the baseline.
func (h *HheaTable) Descender() int16 { return h.hhea.Descender }

// LineGap returns the typographic line gap.
func (h *HheaTable) LineGap() int16 { return h.hhea.LineGap }

// AdvanceWidthMax returns the maximum advance width in the 'hmtx' table.
func (h *HheaTable) AdvanceWidthMax() uint16 { return h.hhea.AdvanceMax }

// MinLeftSideBearing returns the minimum left side bearing of glyphs with
// contours.
func (h *HheaTable) MinLeftSideBearing() int16 { return h.hhea.MinFirstSideBearing }

// MinRightSideBearing returns the minimum right side bearing of glyphs with
// contours.
func (h *HheaTable) MinRightSideBearing() int16 { return h.hhea.MinSecondSideBearing }

// XMaxExtent returns the maximum of left side bearing plus glyph width.
func (h *HheaTable) XMaxExtent() int16 { return h.hhea.MaxExtent }

// CaretSlopeRise returns the rise of the caret slope; rise 1 over run 0 is
// a vertical caret.
func (h *HheaTable) CaretSlopeRise() int16 { return h.hhea.CaretSlopeRise }

// CaretSlopeRun returns the run of the caret slope.
func (h *HheaTable) CaretSlopeRun() int16 { return h.hhea.CaretSlopeRun }

// CaretOffset returns how far slanted highlights are shifted.
func (h *HheaTable) CaretOffset() int16 { return h.hhea.CaretOffset }

// NumberOfHMetrics returns the number of long metrics in the 'hmtx' table.
func (h *HheaTable) NumberOfHMetrics() uint16 { return h.hhea.NumOfLongMetrics }

// PostTable is a read-only view of the header of an OpenType 'post' table.
type PostTable struct {
	post tables.Post
	data []byte
}

// NewPostTable parses raw 'post' table data. Versions 1.0, 2.0 and 3.0
// are supported.
func NewPostTable(data []byte) (*PostTable, error) {
	if err := checkLength(TagPost, data, postLength); err != nil {
		return nil, err
	}
	post, _, err := tables.ParsePost(data)
	if err != nil {
		return nil, &TableError{Tag: TagPost, Err: fmt.Errorf("%w: %v", ErrTableMalformed, err)}
	}
	return &PostTable{post: post, data: data}, nil
}

// Version returns the table version as 16.16 fixed point.
func (p *PostTable) Version() int32 {
	return int32(binary.BigEndian.Uint32(p.data[postVersion:]))
}

// ItalicAngle returns the italic angle in counter-clockwise degrees from
// the vertical, decoded from 16.16 fixed point.
func (p *PostTable) ItalicAngle() float64 {
	return float64(int32(binary.BigEndian.Uint32(p.data[postItalicAngle:]))) / 65536
}

// UnderlinePosition returns the distance of the top of the underline from
// the baseline in font units, negative below the baseline.
func (p *PostTable) UnderlinePosition() int16 { return p.post.UnderlinePosition }

// UnderlineThickness returns the suggested underline thickness in font
// units.
func (p *PostTable) UnderlineThickness() int16 { return p.post.UnderlineThickness }

// IsFixedPitch reports whether the font is monospaced.
func (p *PostTable) IsFixedPitch() bool { return p.post.IsFixedPitch != 0 }
