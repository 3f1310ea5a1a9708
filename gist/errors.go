package gist

import "fmt"

type (
	GistNotFound struct {
		ID int64
	}

	DuplicateContent struct {
		Path     string
		Checksum string
	}

	ContentUnavailable struct {
		Path  string
		cause error
	}
)

func (g GistNotFound) Error() string {
	return fmt.Sprintf("gist %v not found", g.ID)
}

func (d DuplicateContent) Error() string {
	return fmt.Sprintf("content of %v (checksum %v) is already part of another file", d.Path, d.Checksum)
}

func (c ContentUnavailable) Error() string {
	return fmt.Sprintf("content of %v cannot be read from disk, cause %v", c.Path, c.cause)
}

func (c ContentUnavailable) Unwrap() error {
	return c.cause
}
