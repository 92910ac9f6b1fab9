package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/baslie/yandex-reviews-to-md/config"
	"github.com/baslie/yandex-reviews-to-md/models"
	"github.com/baslie/yandex-reviews-to-md/progress"
	"github.com/baslie/yandex-reviews-to-md/render"
	"github.com/baslie/yandex-reviews-to-md/scraper/yandex"
	"github.com/baslie/yandex-reviews-to-md/services"
	"github.com/baslie/yandex-reviews-to-md/storage"
	"github.com/baslie/yandex-reviews-to-md/utils"
)

// ErrInterrupted marks a user-initiated cancellation during the fetch.
var ErrInterrupted = errors.New("operation cancelled by user (Ctrl+C)")

// ReviewSource is the single capability the command needs from the scraping
// layer: fetch the full review batch for a business ID, reporting progress.
type ReviewSource interface {
	Fetch(ctx context.Context, id int64, rep progress.Reporter) (*models.Result, error)
}

// newReviewSource builds the production scraper; tests substitute a fake.
var newReviewSource = func(cfg *config.Config, logger *utils.Logger) ReviewSource {
	return yandex.New(cfg, logger)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	cancelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var (
	outputFlag  string
	verboseFlag bool
	archiveFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "yandex-reviews-to-md [input]",
	Short: "Download Yandex Maps reviews for a business into a Markdown file",
	Long: `Download all customer reviews for a Yandex Maps business listing and
save them as a single readable Markdown document.

The input is either a numeric business ID or a listing URL containing one:

  yandex-reviews-to-md https://yandex.ru/maps/org/1234567 -o reviews.md
  yandex-reviews-to-md 1234567 -o out/

When the input is omitted, it is prompted for interactively.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "destination file (.md) or directory")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "periodic log lines instead of progress widgets")
	rootCmd.Flags().BoolVar(&archiveFlag, "archive", false, "also archive the reviews to PostgreSQL")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. The cancellation message is printed at the
// point of interruption, everything else here.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrInterrupted) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(verboseFlag)
	cfg := config.Load()

	input := ""
	if len(args) == 1 {
		input = args[0]
	}
	if strings.TrimSpace(input) == "" {
		var err error
		input, err = promptInput(cmd)
		if err != nil {
			return err
		}
	}

	id, err := yandex.ExtractID(strings.TrimSpace(input))
	if err != nil {
		return err
	}

	// Resolve the destination before any expensive work begins.
	outPath, err := storage.ResolvePath(outputFlag, id)
	if err != nil {
		return err
	}

	logger.Debug("Starting scrape for business ID %d", id)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reporter := progress.NewConsole(logger, verboseFlag, "Fetching reviews")
	defer reporter.Done()

	start := time.Now()
	result, err := newReviewSource(cfg, logger).Fetch(ctx, id, reporter)
	reporter.Done()
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), cancelStyle.Render("[-] "+ErrInterrupted.Error()))
			return ErrInterrupted
		}
		return fmt.Errorf("fetch reviews: %w", err)
	}

	logger.Debug("Downloaded %d reviews in %.1fs", len(result.Reviews), time.Since(start).Seconds())

	summary := services.NewSummaryService(logger)
	summary.Log(summary.Generate(result.Reviews))

	doc := renderDocument(logger, result)

	var writer storage.DocumentWriter = storage.NewMarkdownWriter()
	if err := writer.Write(outPath, doc); err != nil {
		return err
	}

	if archiveFlag {
		archive(cfg, logger, result)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("[+] Markdown saved: ")+outPath)
	return nil
}

// renderDocument runs the renderer with a cosmetic formatting progress
// indicator. The indicator never alters the document content.
func renderDocument(logger *utils.Logger, result *models.Result) string {
	formatRep := progress.NewConsole(logger, verboseFlag, "Formatting")
	defer formatRep.Done()

	return render.Markdown(result.Company, result.Reviews, render.Options{
		OnItem: formatRep.Progress,
	})
}

// archive persists the batch to PostgreSQL. Archive failures are warnings:
// the Markdown document remains the primary output of the run.
func archive(cfg *config.Config, logger *utils.Logger, result *models.Result) {
	store, err := storage.NewReviewStore(cfg.DSN())
	if err != nil {
		logger.Warn("Archive disabled — could not connect to PostgreSQL: %v", err)
		return
	}
	archiveTo(store, logger, result)
}

func archiveTo(store storage.ReviewArchiver, logger *utils.Logger, result *models.Result) {
	defer store.Close()

	if err := store.Save(result); err != nil {
		logger.Warn("Archive failed: %v", err)
		return
	}
	logger.Debug("Archived %d reviews to PostgreSQL", len(result.Reviews))
}

func promptInput(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter the reviews page URL or business ID: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
