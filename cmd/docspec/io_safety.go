package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

const stdinPath = "-"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
)

// readInput reads path, or stdin (os.Stdin when nil) for "-", and returns
// the raw bytes with the name that drives syntax detection.
func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == stdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}

		data, err := io.ReadAll(io.LimitReader(stdin, codec.MaxInputSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, stdinPath, nil
	}

	content, resolvedPath, err := safeReadFile(path)
	if err != nil {
		return nil, "", err
	}

	return content, resolvedPath, nil
}

// loadDocuments reads and decodes the documents in path.
func loadDocuments(path string, stdin io.Reader) ([]*sentence.Document, int, error) {
	data, name, err := readInput(path, stdin)
	if err != nil {
		return nil, 0, err
	}

	docs, err := codec.LoadDocuments(bytes.NewReader(data), name)
	if err != nil {
		return nil, len(data), err
	}

	return docs, len(data), nil
}

func safeReadFile(path string) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in resolveUserFilePath.
	content, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return content, resolvedPath, nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}

// openOutput returns fallback for an empty path, otherwise a created file
// that the caller must close.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == stdinPath {
		return fallback, func() error { return nil }, nil
	}

	if strings.ContainsRune(path, '\x00') {
		return nil, nil, fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return file, file.Close, nil
}
