package typeface

// Tag identifies an sfnt table, such as 'head' or 'hhea'.
type Tag uint32

// Common table tags.
var (
	TagHead = MakeTag("head")
	TagHhea = MakeTag("hhea")
	TagPost = MakeTag("post")
	TagOS2  = MakeTag("OS/2")
	TagCmap = MakeTag("cmap")
)

// MakeTag builds a Tag from a string of up to four characters.
// Shorter strings are padded with spaces, as the OpenType spec requires.
func MakeTag(s string) Tag {
	var b [4]byte
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = ' '
		}
	}
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// String returns the four characters of the tag.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}
