package backtest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/triplet-forecast/internal/models"
)

func fixedSteps(ranks ...int) []Step {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	steps := make([]Step, len(ranks))
	for i, r := range ranks {
		hits := make([]bool, len(DefaultTopKs))
		for j, k := range DefaultTopKs {
			hits[j] = r <= k
		}
		steps[i] = Step{
			Index:  i,
			Date:   start.AddDate(0, 0, i),
			Truth:  models.Triplet(i),
			PTrue:  0.01,
			Rank:   r,
			Brier:  0.98,
			InTopK: hits,
			Level:  LevelOverall,
			Key:    LevelOverall,
		}
	}
	return steps
}

func TestSummarize(t *testing.T) {
	summary := Summarize(fixedSteps(1, 2, 8, 40), DefaultTopKs)

	if summary.TotalTests != 4 {
		t.Fatalf("expected 4 tests, got %d", summary.TotalTests)
	}
	wantMRR := (1.0 + 0.5 + 0.125 + 0.025) / 4
	if math.Abs(summary.MRR-wantMRR) > 1e-12 {
		t.Fatalf("expected mrr %f, got %f", wantMRR, summary.MRR)
	}
	if math.Abs(summary.MeanBrier-0.98) > 1e-12 {
		t.Fatalf("expected mean brier 0.98, got %f", summary.MeanBrier)
	}
	wantHits := map[int]int{1: 1, 5: 2, 10: 3, 20: 3}
	for k, want := range wantHits {
		if summary.Hits[k] != want {
			t.Fatalf("top-%d: expected %d hits, got %d", k, want, summary.Hits[k])
		}
		if !summary.HitRateCI[k].Contains(summary.HitRates[k]) {
			t.Fatalf("top-%d: interval %+v excludes the estimate", k, summary.HitRateCI[k])
		}
	}
	if !summary.StartDate.Equal(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date %s", summary.StartDate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, DefaultTopKs)
	if summary.TotalTests != 0 || summary.MRR != 0 || summary.MeanBrier != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if summary.Hits[1] != 0 {
		t.Fatalf("expected zero hits")
	}
}

func TestClopperPearson(t *testing.T) {
	tail := math.Pow(0.025, 0.1)

	none := ClopperPearson(0, 10, 0.95)
	if none.Lower != 0 || math.Abs(none.Upper-(1-tail)) > 1e-6 {
		t.Fatalf("unexpected interval for 0/10: %+v", none)
	}
	all := ClopperPearson(10, 10, 0.95)
	if all.Upper != 1 || math.Abs(all.Lower-tail) > 1e-6 {
		t.Fatalf("unexpected interval for 10/10: %+v", all)
	}
	half := ClopperPearson(50, 100, 0.95)
	if !(half.Lower < 0.5 && half.Upper > 0.5) {
		t.Fatalf("interval %+v should contain 0.5", half)
	}
	if math.Abs((0.5-half.Lower)-(half.Upper-0.5)) > 1e-6 {
		t.Fatalf("interval %+v should be symmetric", half)
	}
	if empty := ClopperPearson(0, 0, 0.95); empty.Lower != 0 || empty.Upper != 1 {
		t.Fatalf("expected [0,1] without data, got %+v", empty)
	}
}

func TestUniformBaseline(t *testing.T) {
	b := UniformBaseline([]int{1, 5, 2000})
	if math.Abs(b.Brier-0.999) > 1e-12 {
		t.Fatalf("expected uniform brier 0.999, got %f", b.Brier)
	}
	if b.HitRates[5] != 0.005 || b.HitRates[2000] != 1 {
		t.Fatalf("unexpected hit rates %v", b.HitRates)
	}
	// harmonic number H(1000) / 1000
	if math.Abs(b.MRR-0.007485470860550345) > 1e-12 {
		t.Fatalf("unexpected uniform mrr %f", b.MRR)
	}
}

func TestGenerateStepsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", StepsCSVFileName(GroupingWeekly))
	if err := GenerateStepsCSV(fixedSteps(3, 700), path); err != nil {
		t.Fatalf("GenerateStepsCSV failed: %v", err)
	}
	if filepath.Base(path) != "weekly_backtest_results.csv" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "date,trueNum,p_true,rank,brier,observationsUsed,source" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "2023-05-01" || rows[1][1] != "000" || rows[1][3] != "3" || rows[1][6] != LevelOverall {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "001" || rows[2][3] != "700" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	summary := Summarize(fixedSteps(1, 2), DefaultTopKs)
	summary.Grouping = GroupingMonthly
	report := GenerateConsoleReport(summary)
	for _, want := range []string{"Backtest Report (monthly)", "Tests: 2", "Top-1: 50.00%", "MRR: 0.750000"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunWalkForward(t *testing.T) {
	result := &Result{
		Grouping: GroupingConstant,
		Config:   DefaultConfig(),
		Steps:    fixedSteps(1, 1, 1, 900, 900, 900, 2),
	}
	wf, err := RunWalkForward(result, WalkForwardConfig{WindowSize: 3})
	if err != nil {
		t.Fatalf("RunWalkForward failed: %v", err)
	}
	if len(wf.Windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(wf.Windows))
	}
	if wf.Windows[2].Summary.TotalTests != 1 {
		t.Fatalf("expected a trailing window of one test")
	}
	if wf.Windows[1].Summary.TrainSize != result.Config.MinTrain+3 {
		t.Fatalf("unexpected train size %d", wf.Windows[1].Summary.TrainSize)
	}
	if math.Abs(wf.ConsistencyScore-2.0/3.0) > 1e-12 {
		t.Fatalf("expected consistency 2/3, got %f", wf.ConsistencyScore)
	}
	if wf.MRRDrift >= 0 {
		t.Fatalf("expected negative drift, got %f", wf.MRRDrift)
	}

	wf, err = RunWalkForward(result, WalkForwardConfig{WindowSize: 3, MinTests: 2})
	if err != nil {
		t.Fatalf("RunWalkForward failed: %v", err)
	}
	if len(wf.Windows) != 2 {
		t.Fatalf("expected short window dropped, got %d windows", len(wf.Windows))
	}

	if _, err := RunWalkForward(result, WalkForwardConfig{}); err == nil {
		t.Fatalf("expected error for zero window size")
	}
}

func TestRunMonteCarloDeterministic(t *testing.T) {
	summary := Summarize(fixedSteps(1, 1, 2, 3, 1), DefaultTopKs)
	cfg := MonteCarloConfig{Iterations: 200, Seed: 42}

	first, err := RunMonteCarlo(context.Background(), summary, cfg)
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	second, err := RunMonteCarlo(context.Background(), summary, cfg)
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	if first.MeanMRR != second.MeanMRR || first.PValueMRR != second.PValueMRR {
		t.Fatalf("expected identical results for the same seed")
	}
	if len(first.Distribution) != 200 {
		t.Fatalf("expected 200 simulated values, got %d", len(first.Distribution))
	}
	// near-perfect ranks are essentially never matched by chance
	if first.PValueMRR > 0.05 {
		t.Fatalf("expected a small p-value, got %f", first.PValueMRR)
	}
	if first.PValueHitRate[20] <= 0 || first.PValueHitRate[20] > 1 {
		t.Fatalf("p-value out of range: %f", first.PValueHitRate[20])
	}

	if _, err := RunMonteCarlo(context.Background(), Summary{}, cfg); err == nil {
		t.Fatalf("expected error without tests")
	}
}

func TestAggregateResults(t *testing.T) {
	good := Summarize(fixedSteps(1, 1, 1, 2), DefaultTopKs)
	poor := Summarize(fixedSteps(900, 800, 700, 600), DefaultTopKs)

	agg := AggregateResults(
		&Result{Grouping: GroupingWeekly, Summary: poor},
		nil,
		&Result{Grouping: GroupingMonthly, Summary: good},
	)
	if agg.Best != GroupingMonthly {
		t.Fatalf("expected monthly to rank first, got %s", agg.Best)
	}
	if len(agg.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(agg.Scores))
	}
	if agg.Scores[0].Recommendation != RecommendationInformative {
		t.Fatalf("expected informative, got %s", agg.Scores[0].Recommendation)
	}
	if agg.Scores[1].Recommendation != RecommendationNoSignal {
		t.Fatalf("expected no signal, got %s", agg.Scores[1].Recommendation)
	}
}

func TestExportRoundTrip(t *testing.T) {
	result := &Result{
		Grouping: GroupingMonth,
		Config:   DefaultConfig(),
		Summary:  Summarize(fixedSteps(1, 4), DefaultTopKs),
		Steps:    fixedSteps(1, 4),
	}
	result.Summary.Grouping = GroupingMonth
	export := NewExport(result)
	export.Curve = BuildCurve(result.Steps, 0)

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportToJSON(export, path); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Steps[1].Truth.String() != "001" || decoded.Summary.Hits[1] != 1 {
		t.Fatalf("unexpected decoded export %+v", decoded.Summary)
	}

	run, err := ToRun(export)
	if err != nil {
		t.Fatalf("ToRun failed: %v", err)
	}
	if run.ID != export.RunID || run.Grouping != GroupingMonth || run.TotalTests != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Mix != 0.5 || run.MinTrain != 50 {
		t.Fatalf("unexpected run params %+v", run)
	}
}

func TestBuildCurve(t *testing.T) {
	curve := BuildCurve(fixedSteps(1, 2, 100), 0)
	if len(curve) != 3 {
		t.Fatalf("expected 3 points, got %d", len(curve))
	}
	if curve[0].MRR != 1 || curve[0].HitRate != 1 {
		t.Fatalf("unexpected first point %+v", curve[0])
	}
	last := curve.Final()
	if math.Abs(last.MRR-(1+0.5+0.01)/3) > 1e-12 || math.Abs(last.HitRate-1.0/3.0) > 1e-12 {
		t.Fatalf("unexpected final point %+v", last)
	}
	if (PerformanceCurve{}).Final().Tests != 0 {
		t.Fatalf("expected zero point for empty curve")
	}
}
