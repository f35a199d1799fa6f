package manifest

import (
	"errors"
	"fmt"
)

// ErrNoDialect is returned when no dialect claims a file name.
var ErrNoDialect = errors.New("no dialect for file")

// FileError is a failure reading, parsing or writing one project file.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
