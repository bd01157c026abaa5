package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinPath is the input path that reads from standard input.
const StdinPath = "-"

// maxLineSize bounds a single line read from an input.
const maxLineSize = 1024 * 1024

// ReadInput reads the whole content of path, or of stdin when path is "-".
// Line breaks are normalized to "\n".
func ReadInput(ctx context.Context, path string, stdin io.Reader) (string, error) {
	if path == StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		return readLines(ctx, stdin, "stdin")
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	return readLines(ctx, f, path)
}

func readLines(ctx context.Context, r io.Reader, source string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var b strings.Builder
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", source, err)
	}
	return b.String(), nil
}
