package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/tweet-scraper/internal/config"
	"github.com/jonathan/tweet-scraper/internal/export"
	"github.com/jonathan/tweet-scraper/internal/fetch"
	"github.com/jonathan/tweet-scraper/internal/observability"
	"github.com/jonathan/tweet-scraper/internal/pipeline"
)

// rootOptions holds the flag values of one command invocation.
type rootOptions struct {
	configPath string
	inputFile  string
	sinceDate  string
	format     string
	output     string
	logLevel   string
	endpoint   string
	count      int
	useBrowser bool
	verbose    bool

	// now is replaced in tests.
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "tweet_scraper [urls...]",
		Short: "Fetch tweets from public profiles and export them",
		Long: `Fetches the public timeline of each profile URL, normalizes the tweets, keeps those created
on or after the since date and exports them newest first as json, csv, excel, xml or html.

URLs are taken from the arguments, else from --input-file, else from data/sample_input.txt.
Settings are read from config/settings.json (or $TWEET_SCRAPER_CONFIG); flags override them.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to settings.json (defaults to $"+config.PathEnv+" or "+config.DefaultPath+")")
	flags.StringVarP(&opts.inputFile, "input-file", "i", "", "Text file with one profile URL per line")
	flags.StringVarP(&opts.sinceDate, "since-date", "s", "", "Only include tweets created on or after this date (e.g. 2024-03-05 or 2024-03-05T00:00:00)")
	flags.StringVarP(&opts.format, "format", "f", "", "Export format: json, csv, excel, xml or html (default json)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file path (default <output_dir>/sample_output.<ext>)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARNING or ERROR (default INFO)")
	flags.StringVar(&opts.endpoint, "endpoint", fetch.DefaultEndpoint, "Timeline endpoint base URL")
	flags.IntVar(&opts.count, "count", fetch.DefaultCount, "Number of tweets to request per profile")
	flags.BoolVar(&opts.useBrowser, "use-browser", false, "Fetch through headless Chrome instead of a plain HTTP request")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print a run summary")

	return cmd
}

// runScrape resolves settings, scrapes every URL and writes one export file.
// Fatal conditions are logged and end the run without an error.
func runScrape(cmd *cobra.Command, args []string, opts *rootOptions) error {
	ctx := cmd.Context()
	runID := uuid.New().String()

	// Step 1: Load settings; an unusable file or value only produces a warning
	settingsPath := config.Path()
	if cmd.Flags().Changed("config") {
		settingsPath = opts.configPath
	}
	settings, settingsIssues, settingsErr := config.LoadSettings(settingsPath)
	if settingsErr != nil {
		settings = &config.Settings{}
	}

	// Step 2: Build the logger (flag > settings > INFO)
	logger := observability.NewLogger(cmd.ErrOrStderr(), settings.ResolveLogLevel(opts.logLevel)).
		With("run_id", runID)
	if settingsErr != nil {
		logger.Warn("using built-in defaults", "config", settingsPath, "err", settingsErr)
	} else {
		logger.Debug("loaded settings", "config", settingsPath)
	}
	for _, issue := range settingsIssues {
		logger.Warn("ignoring settings value", "config", settingsPath, "field", issue.Field, "reason", issue.Message)
	}

	// Step 3: Resolve filters and inputs
	since := settings.ResolveSinceDate(opts.sinceDate, opts.now(), logger)
	logger.Info("using since_date filter", "since", since.Format(time.RFC3339))

	formatTag := settings.ResolveFormat(opts.format)
	logger.Info("using export format", "format", formatTag)

	urls := config.ResolveURLs(args, opts.inputFile, logger)
	if len(urls) == 0 {
		logger.Error("no valid profile URLs supplied, exiting")
		return nil
	}

	// Step 4: Scrape
	logger.Info("starting scrape", "urls", len(urls))
	client := fetch.NewClient(&fetch.Options{
		Endpoint:   opts.endpoint,
		UseBrowser: opts.useBrowser,
	}, logger)
	scraper := pipeline.NewScraper(client, logger, pipeline.Options{
		Count: opts.count,
		RunID: runID,
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Debug(e.Message, "step", e.Step, "url", e.URL)
		},
	})
	report := scraper.Run(ctx, urls, since)

	if len(report.Tweets) == 0 {
		logger.Warn("no tweets scraped for the given inputs and filters")
	} else {
		logger.Info("scraped tweets", "count", len(report.Tweets), "failed_profiles", report.Failed())
	}

	// Step 5: Export
	format, err := export.ParseFormat(formatTag)
	if err != nil {
		logger.Error("failed to export data", "err", err)
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.Error("failed to resolve working directory", "err", err)
		return nil
	}
	outputPath, err := settings.ResolveOutputPath(opts.output, format.Extension(), cwd)
	if err != nil {
		logger.Error("failed to resolve output path", "err", err)
		return nil
	}

	if err := export.New(logger).Export(report.Tweets, string(format), outputPath); err != nil {
		logger.Error("failed to export data", "err", err)
		return nil
	}
	logger.Info("export completed", "path", outputPath)

	if opts.verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintProfiles(report)
		printer.PrintTopTweets(report.Tweets)
		printer.PrintExport(string(format), outputPath, len(report.Tweets))
	}

	return nil
}
