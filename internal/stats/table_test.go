package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Course", "Component", "Required"}
	rows := [][]string{
		{"BD", "M1", "19.20"},
		{"HPC", "EndSem", "8.00"},
	}
	rightAlign := map[int]bool{2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Course Component Required" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "BD     M1           19.20" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "HPC    EndSem        8.00" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"数学", "1"}}, nil)
	if lines[0] != "A    B" {
		t.Fatalf("expected header padded to double-width cell, got %q", lines[0])
	}
}
