package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/marksplan/internal/catalog"
	"github.com/verte-zerg/marksplan/internal/model"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 50, 90, 50}},
		{Name: "B", Values: []float64{0, 0, 100, 100}},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend: ⠁ A (solid)  ⠁ B (dashed)") {
		t.Fatalf("expected legend in output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes when writing to a buffer")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 plot rows and legend, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100% │ ") || !strings.HasPrefix(lines[4], "  0% │ ") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 10, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}

func TestMarksSeriesPercentOfMax(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	marks := model.Marks{}
	marks.Set("BD", "M1", 15)
	marks.Set("BD", "EndSem", 100)
	marks.Set("HPC", "M1", 0)

	series := MarksSeries(cat, marks)
	if len(series) != 5 || series[0].Name != "BD" {
		t.Fatalf("unexpected series: %+v", series)
	}
	want := []float64{50, 0, 100, 0}
	for i, v := range want {
		if series[0].Values[i] != v {
			t.Fatalf("expected BD[%d]=%v, got %v", i, v, series[0].Values[i])
		}
	}
	if series[1].Values[0] != 0 {
		t.Fatalf("expected zero-max component to plot as 0, got %v", series[1].Values[0])
	}
}

func TestResampleSeries(t *testing.T) {
	up := resampleSeries([]float64{0, 100}, 5)
	want := []float64{0, 25, 50, 75, 100}
	for i, v := range want {
		if up[i] != v {
			t.Fatalf("expected %v at %d, got %v", v, i, up[i])
		}
	}
	down := resampleSeries([]float64{10, 20, 30, 40}, 2)
	if down[0] != 15 || down[1] != 35 {
		t.Fatalf("unexpected downsample: %v", down)
	}
}
