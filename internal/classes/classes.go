package classes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// List holds category names in file order. Line N of the names file is the
// category the model reports as class id N.
type List struct {
	names []string
}

// NewList wraps names without copying.
func NewList(names []string) *List {
	return &List{names: names}
}

// Load reads a names file (one category per line, e.g. coco.names).
func Load(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer file.Close()

	list, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file %s: %w", path, err)
	}
	return list, nil
}

// Parse reads category names from r. Trailing newlines are ignored, blank
// lines inside the file keep their position so indices stay aligned.
func Parse(r io.Reader) (*List, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		names = append(names, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no class names found")
	}
	return &List{names: names}, nil
}

// Resolve converts the model's 1-based class id into a category name.
func (l *List) Resolve(classID int) (string, error) {
	index := classID - 1
	if index < 0 || index >= len(l.names) {
		return "", fmt.Errorf("class id %d out of range [1,%d]", classID, len(l.names))
	}
	return l.names[index], nil
}

// Len returns the number of known categories.
func (l *List) Len() int {
	return len(l.names)
}
