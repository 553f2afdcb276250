package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/typespeed/internal/config"
	"github.com/verte-zerg/typespeed/internal/model"
	"github.com/verte-zerg/typespeed/internal/trial"
)

func TestValidateConfig(t *testing.T) {
	logLevel = "info"
	if err := validateConfig(model.Config{Words: 30, Duration: 60}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := validateConfig(model.Config{Words: 0, Duration: 60}); err == nil || !strings.Contains(err.Error(), "--words") {
		t.Fatalf("expected words error, got %v", err)
	}
	if err := validateConfig(model.Config{Words: 30, Duration: 0}); err == nil || !strings.Contains(err.Error(), "--duration") {
		t.Fatalf("expected duration error, got %v", err)
	}
	logLevel = "loud"
	defer func() { logLevel = "info" }()
	if err := validateConfig(model.Config{Words: 30, Duration: 60}); err == nil || !strings.Contains(err.Error(), "--log-level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typespeed", "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must be valid TOML: %v", err)
	}
	if cfg.Practice.Words != nil || cfg.Serve.Addr != nil {
		t.Fatalf("template values must be commented out: %+v", cfg)
	}
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure config: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[practice]\nwords = 5\n" {
		t.Fatalf("existing config was overwritten: %q", data)
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	path := filepath.Join(dir, "typespeed", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[practice]\nwords = 40\nduration = 30\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TYPESPEED_DURATION", "45")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--words", "12"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.Words != 12 {
		t.Fatalf("expected flag to win, got words %d", cfg.Words)
	}
	if cfg.Duration != 45 {
		t.Fatalf("expected env to override file, got duration %d", cfg.Duration)
	}
}

func TestNewBankFromWordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	bank, err := newBank(model.Config{WordListPath: path, Seed: 3})
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	if bank.Size() != 2 {
		t.Fatalf("expected 2 words, got %d", bank.Size())
	}
	if _, err := newBank(model.Config{WordListPath: filepath.Join(t.TempDir(), "missing.txt")}); err == nil {
		t.Fatalf("expected error for missing word list")
	}
}

type fakeArchive struct {
	results  []model.TrialResult
	mistakes map[string][]model.Mistake
	top      []model.MistakeCount
	lastArg  int
}

func (f *fakeArchive) ListMistakes(_ context.Context, trialID string) ([]model.Mistake, error) {
	return f.mistakes[trialID], nil
}

func (f *fakeArchive) ListTrials(_ context.Context, last int) ([]model.TrialResult, error) {
	f.lastArg = last
	return f.results, nil
}

func (f *fakeArchive) TopMistakes(_ context.Context, n int) ([]model.MistakeCount, error) {
	if n < len(f.top) {
		return f.top[:n], nil
	}
	return f.top, nil
}

type fakeSeries model.Series

func (f fakeSeries) Series(context.Context) model.Series {
	return model.Series(f)
}

func TestWriteHistoryReport(t *testing.T) {
	archive := &fakeArchive{
		results:  []model.TrialResult{{ID: "a", WPM: 30, Accuracy: 90}, {ID: "b", WPM: 50, Accuracy: 100}},
		mistakes: map[string][]model.Mistake{"b": {{WordIndex: 1, Expected: "quick", Typed: "quikc"}}},
		top:      []model.MistakeCount{{Expected: "quick", Count: 2}, {Expected: "fox", Count: 1}},
	}
	series := fakeSeries{WPM: []int{50}, Accuracy: []int{100}, Labels: []string{"Test 1"}}

	var buf bytes.Buffer
	err := writeHistoryReport(context.Background(), &buf, archive, series, reportOptions{Window: 1, Top: 1, Width: 20})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	if archive.lastArg != -1 {
		t.Fatalf("expected all trials to be requested, got %d", archive.lastArg)
	}
	for _, want := range []string{"All trials", "Best WPM: 50", "Performance (last 1 tests)", "Recent Tests", "Latest trial: 1 mistakes", "quikc → quick", "Most Mistyped Words"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report: %s", want, out)
		}
	}
	if strings.Contains(out, "fox") {
		t.Fatalf("expected top to limit mistakes: %s", out)
	}
	if strings.Count(out, "Test 1") != 1 || strings.Contains(out, "Test 2") {
		t.Fatalf("expected recent table to follow the chart window: %s", out)
	}
}

func TestDefaultsMatchTrial(t *testing.T) {
	cmd := newRootCmd()
	words, err := cmd.Flags().GetInt("words")
	if err != nil {
		t.Fatalf("get words: %v", err)
	}
	if words != trial.DefaultWords {
		t.Fatalf("expected default words %d, got %d", trial.DefaultWords, words)
	}
}

func TestLatestSnapshotKeepsNewest(t *testing.T) {
	ch := make(chan trial.Snapshot, 1)
	notify := latestSnapshot(ch)

	notify(trial.Snapshot{Seq: 1})
	notify(trial.Snapshot{Seq: 3, Status: model.StatusFinished})
	notify(trial.Snapshot{Seq: 2})

	got := <-ch
	if got.Seq != 3 || !got.Finished() {
		t.Fatalf("expected newest finished snapshot, got %+v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected one pending snapshot, got extra %+v", extra)
	default:
	}

	notify(trial.Snapshot{Seq: 4})
	if got := <-ch; got.Seq != 4 {
		t.Fatalf("expected seq 4 after drain, got %d", got.Seq)
	}
}
