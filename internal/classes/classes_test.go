package classes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve_OneBasedIndex(t *testing.T) {
	list := NewList([]string{"apple", "banana", "orange"})

	tests := []struct {
		classID  int
		expected string
	}{
		{1, "apple"},
		{2, "banana"},
		{3, "orange"},
	}

	for _, tt := range tests {
		name, err := list.Resolve(tt.classID)
		if err != nil {
			t.Fatalf("Resolve(%d) failed: %v", tt.classID, err)
		}
		if name != tt.expected {
			t.Errorf("Resolve(%d) = %q, expected %q", tt.classID, name, tt.expected)
		}
	}
}

func TestResolve_OutOfRange(t *testing.T) {
	list := NewList([]string{"apple", "banana", "orange"})

	for _, classID := range []int{0, -1, 4, 91} {
		if name, err := list.Resolve(classID); err == nil {
			t.Errorf("Resolve(%d) = %q, expected error", classID, name)
		}
	}
}

func TestParse_KeepsLineOrder(t *testing.T) {
	list, err := Parse(strings.NewReader("person\r\nbicycle\n\ncar\n\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if list.Len() != 4 {
		t.Fatalf("Expected 4 names, got %d", list.Len())
	}

	name, _ := list.Resolve(2)
	if name != "bicycle" {
		t.Errorf("Expected bicycle at id 2, got %q", name)
	}
	name, _ = list.Resolve(4)
	if name != "car" {
		t.Errorf("Expected car at id 4, got %q", name)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(strings.NewReader("\n\n")); err == nil {
		t.Error("Expected error for empty class list")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coco.names")
	if err := os.WriteFile(path, []byte("apple\nbanana\norange\n"), 0644); err != nil {
		t.Fatalf("Failed to write class file: %v", err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	name, err := list.Resolve(1)
	if err != nil || name != "apple" {
		t.Errorf("Resolve(1) = %q, %v; expected apple", name, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.names")); err == nil {
		t.Error("Expected error for missing class file")
	}
}
