package typeface

import (
	"errors"
	"fmt"
)

// Sentinel errors for typeface package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("typeface: empty font data")

	// ErrClosed is returned when a closed typeface is queried.
	ErrClosed = errors.New("typeface: typeface is closed")

	// ErrTableNotFound is returned when the font has no table with the tag.
	ErrTableNotFound = errors.New("typeface: table not found")

	// ErrTableTooShort is returned when table data ends before a field.
	ErrTableTooShort = errors.New("typeface: table data too short")

	// ErrTableMalformed is returned when table data cannot be decoded,
	// e.g. a 'post' table with an unsupported version.
	ErrTableMalformed = errors.New("typeface: malformed table data")

	// ErrAlreadyRegistered is returned when a typeface is registered twice.
	ErrAlreadyRegistered = errors.New("typeface: typeface is already registered")

	// ErrTagTaken is returned when a registration tag is already in use.
	ErrTagTaken = errors.New("typeface: tag is already taken")

	// ErrNotRegistered is returned for typefaces unknown to a Manager.
	ErrNotRegistered = errors.New("typeface: typeface is not registered")
)

// TableError reports a failure to load or decode one sfnt table.
type TableError struct {
	Tag Tag
	Err error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("typeface: table %q: %v", e.Tag.String(), e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}
