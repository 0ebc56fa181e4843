package severity

import (
	"reflect"
	"testing"
)

func TestDefault_KnownCategories(t *testing.T) {
	table := Default()

	tests := []struct {
		category string
		expected string
	}{
		{"apple", "nivel de desastre detectado: alto"},
		{"banana", "nivel de desastre detectado: medio"},
		{"orange", "nivel de desastre detectado: bajo"},
	}

	for _, tt := range tests {
		text, ok := table.SeverityFor(tt.category)
		if !ok {
			t.Errorf("SeverityFor(%q) reported absent", tt.category)
			continue
		}
		if text != tt.expected {
			t.Errorf("SeverityFor(%q) = %q, expected %q", tt.category, text, tt.expected)
		}
	}
}

func TestDefault_UnknownCategory(t *testing.T) {
	table := Default()

	for _, category := range []string{"person", "Apple", "", "apple "} {
		if text, ok := table.SeverityFor(category); ok {
			t.Errorf("SeverityFor(%q) = %q, expected absent", category, text)
		}
	}
}

func TestNew_CopiesInput(t *testing.T) {
	levels := map[string]string{"kite": "low"}
	table := New(levels)

	levels["kite"] = "changed"
	levels["car"] = "high"

	if text, _ := table.SeverityFor("kite"); text != "low" {
		t.Errorf("Expected table to keep original value, got %q", text)
	}
	if _, ok := table.SeverityFor("car"); ok {
		t.Error("Table should not see entries added after construction")
	}
}

func TestCategories_Sorted(t *testing.T) {
	got := Default().Categories()
	expected := []string{"apple", "banana", "orange"}

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Categories() = %v, expected %v", got, expected)
	}
	if Default().Len() != 3 {
		t.Errorf("Len() = %d, expected 3", Default().Len())
	}
}
