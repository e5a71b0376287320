package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/uluyol/heyp-ewm/go/config"
	"github.com/uluyol/heyp-ewm/go/series"
	"github.com/uluyol/heyp-ewm/go/stats"
)

const inputCSV = "t,x\n0,\n1,\n2,5\n3,7\n4,NA\n5,2\n6,1\n7,4\n"

func writeInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(p, []byte(inputCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func readOutput(t *testing.T, path, col string) []series.Opt[float64] {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, err := series.ReadCSVColumn(f, col)
	if err != nil {
		t.Fatal(err)
	}
	return s.Opts()
}

func TestRunMeanKeepInput(t *testing.T) {
	xs, err := readColumn(writeInput(t), "x")
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.csv")
	opts := stats.Options[float64]{Alpha: 0.5, MinPeriods: 1, IgnoreNA: true}
	if err := runMean(xs, opts, "x", out, "csv", true); err != nil {
		t.Fatal(err)
	}
	s := series.Some[float64]
	n := series.None[float64]()
	want := []series.Opt[float64]{n, n, s(5), s(6), s(6), s(4), s(2.5), s(3.25)}
	if diff := cmp.Diff(want, readOutput(t, out, "x_ewm")); diff != "" {
		t.Errorf("want - got: %s", diff)
	}
	if diff := cmp.Diff(xs.Opts(), readOutput(t, out, "x")); diff != "" {
		t.Errorf("input column: want - got: %s", diff)
	}
}

func TestRunMeanJSON(t *testing.T) {
	xs := series.FromOpts([]series.Opt[float32]{series.None[float32](), series.Some[float32](2)})
	out := filepath.Join(t.TempDir(), "out.json")
	if err := runMean(xs, stats.Options[float32]{Alpha: 1}, "y", out, "json", false); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(b)); got != `{"y_ewm":[null,2]}` {
		t.Errorf("got %s", got)
	}
}

func TestMeanCmdOptions(t *testing.T) {
	c := &meanCmd{defaults: config.Defaults{Alpha: 0.5, Adjust: true, MinPeriods: 1, IgnoreNA: true}}
	fs := flag.NewFlagSet("mean", flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse([]string{"-col", "x", "-span", "3", "-adjust=false", "-min-periods", "2"}); err != nil {
		t.Fatal(err)
	}
	got, err := c.options()
	if err != nil {
		t.Fatal(err)
	}
	want := stats.Options[float64]{Alpha: 0.5, Adjust: false, MinPeriods: 2, IgnoreNA: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("want - got: %s", diff)
	}

	if err := fs.Parse([]string{"-alpha", "0.3"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.options(); !errors.Is(err, stats.ErrInvalidArgument) {
		t.Errorf("alpha and span together: got err %v, want ErrInvalidArgument", err)
	}
}

func TestRunSweep(t *testing.T) {
	in := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "sweep")
	s, err := config.ParseSweep([]byte(`
input: ` + in + `
column: x
outDir: ` + outDir + `
parallelism: 2
runs:
- name: unadjusted
  alpha: 0.5
  adjust: false
- name: adjusted
  com: 1
- name: raw
  alpha: 1
- name: raw32
  alpha: 1
  minPeriods: 2
`))
	if err != nil {
		t.Fatal(err)
	}
	d := config.Defaults{Alpha: 0.5, Adjust: true, MinPeriods: 1, IgnoreNA: true}
	if err := s.Validate(d); err != nil {
		t.Fatal(err)
	}

	report, err := RunSweep(context.Background(), s, d)
	if err != nil {
		t.Fatal(err)
	}

	sm := series.Some[float64]
	n := series.None[float64]()
	wants := map[string][]series.Opt[float64]{
		"unadjusted": {n, n, sm(5), sm(6), sm(6), sm(4), sm(2.5), sm(3.25)},
		"raw":        {n, n, sm(5), sm(7), n, sm(2), sm(1), sm(4)},
		"raw32":      {n, n, n, sm(7), n, sm(2), sm(1), sm(4)},
	}
	for name, want := range wants {
		if diff := cmp.Diff(want, readOutput(t, filepath.Join(outDir, name+".csv"), "x_ewm")); diff != "" {
			t.Errorf("%s: want - got: %s", name, diff)
		}
	}
	adjusted := readOutput(t, filepath.Join(outDir, "adjusted.csv"), "x_ewm")
	if v := adjusted[3]; !v.Valid || v.V < 6.333 || v.V > 6.334 {
		t.Errorf("adjusted[3]: got %+v want 6.3333", v)
	}

	b, err := os.ReadFile(filepath.Join(outDir, "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	var onDisk sweepReport
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatal(err)
	}
	if len(onDisk.Runs) != 4 || len(report.Runs) != 4 {
		t.Fatalf("got %d runs on disk, %d in memory, want 4", len(onDisk.Runs), len(report.Runs))
	}
	ids := map[string]bool{}
	for i, r := range onDisk.Runs {
		if r.Name != s.Runs[i].Name {
			t.Errorf("run %d: got name %q want %q", i, r.Name, s.Runs[i].Name)
		}
		if r.ID == "" || ids[r.ID] {
			t.Errorf("run %d: bad or repeated id %q", i, r.ID)
		}
		ids[r.ID] = true
	}
	if onDisk.Source.Count != 5 || onDisk.Source.Nulls != 3 {
		t.Errorf("source summary: got %+v", onDisk.Source)
	}
	if got := onDisk.Runs[1].Alpha; got != 0.5 {
		t.Errorf("com=1 run: got alpha %v want 0.5", got)
	}
}

func TestRunSweepBadInput(t *testing.T) {
	s := &config.Sweep{
		Input:  filepath.Join(t.TempDir(), "missing.csv"),
		Column: "x",
		OutDir: t.TempDir(),
		Runs:   []config.Run{{Name: "a"}},
	}
	if _, err := RunSweep(context.Background(), s, config.Defaults{Alpha: 0.5}); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestSelectRuns(t *testing.T) {
	runs := []config.Run{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	got, err := selectRuns(runs, []string{"c", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("got %+v", got)
	}
	if all, _ := selectRuns(runs, nil); len(all) != 3 {
		t.Errorf("no filter: got %d runs want 3", len(all))
	}
	if _, err := selectRuns(runs, []string{"a", "zz"}); err == nil || !strings.Contains(err.Error(), "zz") {
		t.Errorf("got err %v, want unknown run zz", err)
	}
}
