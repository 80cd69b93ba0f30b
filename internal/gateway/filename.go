package gateway

import (
	"errors"
	"regexp"
	"strings"
)

// MaxFilenameLength is the longest accepted filename.
const MaxFilenameLength = 200

// Filename is a name that passed ValidateFilename.
type Filename string

func (f Filename) String() string {
	return string(f)
}

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\- ]+$`)

var (
	errEmptyFilename     = errors.New("filename is empty")
	errFilenameTooLong   = errors.New("filename exceeds 200 characters")
	errFilenameSeparator = errors.New("filename contains a path separator")
	errFilenameTraversal = errors.New("filename contains a traversal sequence")
	errFilenameCharset   = errors.New("filename contains disallowed characters")
)

// ValidateFilename checks raw against the filename grammar.
// Rejections wrap ErrInvalidFilename.
func ValidateFilename(raw string) (Filename, error) {
	switch {
	case raw == "":
		return "", invalidFilename(errEmptyFilename)
	case len(raw) > MaxFilenameLength:
		return "", invalidFilename(errFilenameTooLong)
	case strings.ContainsAny(raw, `/\`):
		return "", invalidFilename(errFilenameSeparator)
	case strings.Contains(raw, ".."):
		return "", invalidFilename(errFilenameTraversal)
	case !filenamePattern.MatchString(raw):
		return "", invalidFilename(errFilenameCharset)
	}
	return Filename(raw), nil
}
