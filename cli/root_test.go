package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baslie/yandex-reviews-to-md/config"
	"github.com/baslie/yandex-reviews-to-md/models"
	"github.com/baslie/yandex-reviews-to-md/progress"
	"github.com/baslie/yandex-reviews-to-md/utils"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	if !names["version"] {
		t.Error("root command missing subcommand \"version\"")
	}
}

func TestRootCommandFlags(t *testing.T) {
	for _, want := range []string{"output", "verbose", "archive"} {
		if rootCmd.Flags().Lookup(want) == nil {
			t.Errorf("root command missing flag --%s", want)
		}
	}

	if rootCmd.Flags().ShorthandLookup("o") == nil {
		t.Error("missing -o shorthand for --output")
	}
	if rootCmd.Flags().ShorthandLookup("v") == nil {
		t.Error("missing -v shorthand for --verbose")
	}
}

type fakeArchiver struct {
	saved  int
	closed bool
	err    error
}

func (f *fakeArchiver) Save(result *models.Result) error {
	f.saved = len(result.Reviews)
	return f.err
}

func (f *fakeArchiver) Close() error {
	f.closed = true
	return nil
}

func TestArchiveToSavesAndCloses(t *testing.T) {
	store := &fakeArchiver{}
	result := &models.Result{Reviews: []models.Review{{Stars: 5}, {Stars: 3}}}

	archiveTo(store, utils.NewLogger(false), result)

	if store.saved != 2 {
		t.Errorf("saved = %d; want 2", store.saved)
	}
	if !store.closed {
		t.Error("archiver was not closed")
	}
}

func TestArchiveToToleratesFailure(t *testing.T) {
	store := &fakeArchiver{err: errors.New("db down")}
	result := &models.Result{Reviews: []models.Review{{Stars: 5}}}

	// Archive failures are warnings, never fatal.
	archiveTo(store, utils.NewLogger(false), result)

	if !store.closed {
		t.Error("archiver was not closed after a failed save")
	}
}

type fakeSource struct {
	result *models.Result
	err    error
}

func (f *fakeSource) Fetch(ctx context.Context, id int64, rep progress.Reporter) (*models.Result, error) {
	return f.result, f.err
}

// runWith executes the root command against a substitute review source and
// returns the command error plus captured stdout/stderr.
func runWith(t *testing.T, src ReviewSource, args ...string) (string, string, error) {
	t.Helper()

	restore := newReviewSource
	newReviewSource = func(*config.Config, *utils.Logger) ReviewSource { return src }
	t.Cleanup(func() {
		newReviewSource = restore
		outputFlag = ""
		verboseFlag = false
		archiveFlag = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCancellationWritesNoFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.md")

	_, stderr, err := runWith(t, &fakeSource{err: context.Canceled},
		"1234567", "-o", outPath)

	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v; want ErrInterrupted", err)
	}
	if !strings.Contains(stderr, "cancelled by user") {
		t.Errorf("stderr = %q; want cancellation notice", stderr)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after cancellation: %v", statErr)
	}
}

func TestRunWritesDocument(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "reviews.md")
	src := &fakeSource{result: &models.Result{
		Company: models.Company{ID: 1234567, Name: "Cafe X", Rating: 4.5, RatingCount: 10},
		Reviews: []models.Review{
			{Author: "Alice", PublishedAt: 1700000000, Text: "Great coffee", Stars: 5},
		},
		FetchedAt: time.Now(),
	}}

	stdout, _, err := runWith(t, src,
		"https://yandex.ru/maps/org/1234567/reviews/", "-o", outPath)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("read output: %v", readErr)
	}
	if !strings.Contains(string(data), "# Cafe X") {
		t.Errorf("document missing company heading:\n%s", data)
	}
	if !strings.Contains(string(data), "### 1. Alice") {
		t.Errorf("document missing review heading:\n%s", data)
	}
	if !strings.Contains(stdout, outPath) {
		t.Errorf("stdout = %q; want saved-path notice", stdout)
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}
}
