package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tollcalc/internal/config"
	"tollcalc/internal/matrix"
	"tollcalc/internal/table"
	"tollcalc/internal/toll"

	"github.com/spf13/cobra"
)

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestMatrixRelation(t *testing.T) {
	m := matrix.New([]int64{1, 2}, []int64{1, 3})
	m.Set(0, 0, 0)
	m.Set(0, 1, 4.5)
	m.Set(1, 0, 2)

	rel := matrixRelation(m)
	if got, want := strings.Join(rel.Columns(), ","), "id,1,3"; got != want {
		t.Errorf("columns = %s, want %s", got, want)
	}

	var buf bytes.Buffer
	if err := rel.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "id,1,3\n1,0,4.5\n2,2,\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestEmit_Formats(t *testing.T) {
	defer func(f string) { format = f }(format)

	rel := table.New("a")
	rel.Append(int64(1))

	format = "json"
	var buf bytes.Buffer
	if err := emit(&buf, []int{3}); err != nil {
		t.Fatalf("emit(json) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[\n  3\n]" {
		t.Errorf("emit(json) = %q", buf.String())
	}

	format = "csv"
	buf.Reset()
	if err := emit(&buf, rel); err != nil {
		t.Fatalf("emit(csv) error = %v", err)
	}
	if buf.String() != "a\n1\n" {
		t.Errorf("emit(csv) = %q", buf.String())
	}

	if err := emit(&buf, []int{3}); err == nil {
		t.Error("emit(csv) on a slice should fail")
	}

	format = "xml"
	if err := emit(&buf, rel); err == nil {
		t.Error("emit() with unknown format should fail")
	}
}

func TestAnalysisCommand_TypeCount(t *testing.T) {
	dir := t.TempDir()
	data := "id_1,id_2,route,car\n1,2,A,10\n1,3,A,20\n2,3,B,30\n"
	if err := os.WriteFile(filepath.Join(dir, "counts.csv"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	defer func(c *config.AppConfig, s toll.Schedule, f string) { cfg, schedule, format = c, s, f }(cfg, schedule, format)
	cfg = &config.AppConfig{DataPath: dir}
	schedule = toll.DefaultSchedule()
	format = "json"

	cmd := findCommand(t, "type-count")
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, []string{"counts.csv"}); err != nil {
		t.Fatalf("type-count error = %v", err)
	}

	got := out.String()
	for _, want := range []string{`"low": 1`, `"medium": 1`, `"high": 1`} {
		if !strings.Contains(got, want) {
			t.Errorf("type-count output missing %s:\n%s", want, got)
		}
	}
}

func TestReportCommand_RequiresInput(t *testing.T) {
	defer func(c *config.AppConfig) { cfg = c }(cfg)
	cfg = &config.AppConfig{DataPath: t.TempDir()}

	countsPath, intervalsPath, edgesPath, tripsPath = "", "", "", ""
	if err := reportCmd.RunE(reportCmd, nil); err == nil {
		t.Error("report without datasets should fail")
	}
}

func TestWithinThreshold_ReferenceFlag(t *testing.T) {
	dir := t.TempDir()
	data := "id_start,id_end,distance\n1001400,1001402,9.7\n1001402,1001404,20.2\n"
	if err := os.WriteFile(filepath.Join(dir, "edges.csv"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	defer func(c *config.AppConfig, f string) { cfg, format = c, f }(cfg, format)
	cfg = &config.AppConfig{DataPath: dir, ReferenceID: 1001400}
	format = "json"

	cmd := findCommand(t, "within-threshold")
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, []string{"edges.csv"}); err != nil {
		t.Fatalf("within-threshold with the configured reference error = %v", err)
	}

	if err := cmd.Flags().Set("reference", "0"); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = cmd.Flags().Set("reference", "0")
		cmd.Flags().Lookup("reference").Changed = false
	}()

	err := cmd.RunE(cmd, []string{"edges.csv"})
	if !errors.Is(err, toll.ErrReferenceNotFound) || !strings.Contains(err.Error(), "id 0") {
		t.Errorf("within-threshold --reference 0 error = %v, want reference not found for id 0", err)
	}
}
