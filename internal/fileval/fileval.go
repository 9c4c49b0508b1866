// Package fileval provides pre-analysis checks for script files.
//
// These checks run before a script is read into a session to fail fast on
// files that clearly aren't PowerShell source: binary files, oversized files
// and text in an encoding the linter does not read.
package fileval

import (
	"fmt"
	"os"
)

// FileTooLargeError is returned when a file exceeds the configured maximum size.
type FileTooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf(
		"file too large (%d > %d bytes); increase [file-validation] max-file-size in .pslint.toml to override",
		e.Size, e.MaxSize,
	)
}

// BinaryFileError is returned when a file contains NUL bytes outside of a
// UTF-16 or UTF-32 byte order mark.
type BinaryFileError struct {
	Path string
}

func (e *BinaryFileError) Error() string {
	return "file looks binary"
}

// UnsupportedEncodingError is returned for text the linter cannot read
// directly. UTF-16 and UTF-32 scripts are analyzed through their bundle.
type UnsupportedEncodingError struct {
	Path     string
	Encoding Encoding
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported script encoding %s; lint the analysis bundle instead", e.Encoding)
}

// ValidateFile runs pre-analysis checks on a script:
//  1. Maximum size check (when maxSize > 0)
//  2. Encoding sniff: UTF-8 with or without BOM passes
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if maxSize > 0 && info.Size() > maxSize {
		return &FileTooLargeError{Path: path, Size: info.Size(), MaxSize: maxSize}
	}

	// Use maxSize as the read limit when positive; otherwise read up to 1 MB.
	readLimit := maxSize
	if readLimit <= 0 {
		readLimit = 1 << 20
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := Sniff(f, readLimit)
	if err != nil {
		return err
	}
	switch enc {
	case EncodingUTF8, EncodingUTF8BOM:
		return nil
	case EncodingBinary:
		return &BinaryFileError{Path: path}
	default:
		return &UnsupportedEncodingError{Path: path, Encoding: enc}
	}
}
