package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// stdinPath selects standard input as a document source.
const stdinPath = "-"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	// ErrDocumentTooLarge indicates a document exceeds the configured size limit.
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
	// ErrStdinTwice indicates both documents were requested from stdin.
	ErrStdinTwice = errors.New("stdin can only be read once")
)

// readDocument loads a tree document from path, or from stdin when path is
// "-". The format follows the file extension; stdin is read as JSON unless
// it starts like YAML.
func readDocument(path string, stdin io.Reader, limit int64) (service.Input, error) {
	if path == stdinPath {
		data, err := readLimited(stdin, limit)
		if err != nil {
			return service.Input{}, fmt.Errorf("read stdin: %w", err)
		}

		return service.Input{Label: "stdin", Data: data, Format: sniffFormat(data)}, nil
	}

	resolvedPath, err := resolveUserFilePath(path)
	if err != nil {
		return service.Input{}, fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in resolveUserFilePath.
	file, err := os.Open(resolvedPath)
	if err != nil {
		return service.Input{}, fmt.Errorf("open %s: %w", resolvedPath, err)
	}
	defer file.Close()

	data, err := readLimited(file, limit)
	if err != nil {
		return service.Input{}, fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return service.Input{Label: path, Data: data, Format: node.FormatFromPath(path)}, nil
}

func readLimited(reader io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(reader)
	}

	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %s", ErrDocumentTooLarge, humanize.Bytes(uint64(limit)))
	}

	return data, nil
}

// sniffFormat treats a document whose first non-blank byte opens a JSON
// value as JSON, and anything else as YAML.
func sniffFormat(data []byte) node.Format {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return node.FormatJSON
	}

	return node.FormatYAML
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

// openOutput returns the writer for --output, or fallback when path is empty.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == stdinPath {
		return fallback, func() error { return nil }, nil
	}

	//nolint:gosec // output path is chosen by the user running the CLI.
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output %s: %w", path, err)
	}

	return file, file.Close, nil
}
