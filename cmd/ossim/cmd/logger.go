package cmd

import (
	"io"
	"log"
	"os"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger logs to stderr, or appends to the file at path if path is set.
func newLogger(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return log.New(os.Stderr, "ossim ", log.Ltime), nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}

	l := log.New(f, "ossim ", log.Ldate|log.Ltime|log.Lshortfile)
	l.Printf("logging to %s", path)

	return l, f, nil
}
