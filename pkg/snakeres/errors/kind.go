// Package errors defines the failure taxonomy for resource registration and
// resolution, plus retry helpers for the file loads behind it.
//
// Every error type carries the resource category and tag it concerns and can
// be matched with errors.As. Kind classifies an arbitrary error chain:
//   - KindInvalidArgument: malformed construction data or settings
//   - KindIO: a file could not be read
//   - KindDecode, KindCompilation, KindLink: malformed asset content
//   - KindMissingResource: a tag lookup failed at resolution time
//   - KindDuplicateTag: a tag is already registered in its category
package errors

import (
	"errors"
	"io/fs"
)

// Kind identifies the class of a registration or resolution failure.
type Kind int

const (
	// KindUnknown is any error outside the taxonomy.
	KindUnknown Kind = iota

	// KindInvalidArgument indicates malformed raw construction data.
	KindInvalidArgument

	// KindIO indicates an asset path could not be read.
	KindIO

	// KindDecode indicates image, audio or font data could not be decoded.
	KindDecode

	// KindCompilation indicates a shader stage failed to compile.
	KindCompilation

	// KindLink indicates the shader stage combination is invalid.
	KindLink

	// KindMissingResource indicates a tag lookup failed.
	KindMissingResource

	// KindDuplicateTag indicates the tag is already registered.
	KindDuplicateTag
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindCompilation:
		return "compilation"
	case KindLink:
		return "link"
	case KindMissingResource:
		return "missing_resource"
	case KindDuplicateTag:
		return "duplicate_tag"
	default:
		return "unknown"
	}
}

// KindOf classifies err by the first taxonomy error found in its chain.
// A shader stage that could not be read is a CompilationError wrapping an
// IOError, and classifies as KindCompilation.
func KindOf(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *InvalidArgumentError:
			return KindInvalidArgument
		case *IOError:
			return KindIO
		case *DecodeError:
			return KindDecode
		case *CompilationError:
			return KindCompilation
		case *LinkError:
			return KindLink
		case *MissingResourceError:
			return KindMissingResource
		case *DuplicateTagError:
			return KindDuplicateTag
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				if k := KindOf(inner); k != KindUnknown {
					return k
				}
			}
			return KindUnknown
		}
		err = errors.Unwrap(err)
	}
	return KindUnknown
}

// IsRetryable reports whether repeating the operation might succeed.
// Only IO failures qualify, and not when the file is absent or forbidden.
func IsRetryable(err error) bool {
	if KindOf(err) != KindIO {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return false
	}
	return true
}

// IsMissing reports whether err is a MissingResourceError.
func IsMissing(err error) bool {
	return KindOf(err) == KindMissingResource
}

// IsDuplicate reports whether err is a DuplicateTagError.
func IsDuplicate(err error) bool {
	return KindOf(err) == KindDuplicateTag
}
