package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"vinearchive/pkg/archiver"
	"vinearchive/pkg/config"
	"vinearchive/pkg/logger"
	"vinearchive/pkg/storage"
	"vinearchive/pkg/ui"
	"vinearchive/pkg/vine"
)

var (
	// Archive command flags
	outputDir       string
	concurrent      int
	timeout         time.Duration
	logFile         string
	metricsTextfile string
	archiveURL      string
	apiURL          string
	assumeYes       bool
	skipPosts       bool
	notify          bool
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive [vanity|user-id]",
	Short: "Archive a Vine user's profile and posts",
	Long: `Archive a Vine user's profile and, after confirmation, every post.

The user is given as a vanity name or a numeric user ID. Without an argument
the command asks for one. Once the post IDs are known it asks whether to
download each post; --yes and --skip-posts answer that question up front.

Output layout:
  <output>/<username>/<username>_avatar.jpg
  <output>/<username>/<username>_info.txt
  <output>/<username>/post_<id>/<id>_thumbnail.jpg
  <output>/<username>/post_<id>/<id>_video.mp4
  <output>/<username>/post_<id>/<id>_post_data.txt`,
	Example: `  # Prompt for the user and for confirmation
  vinearchive archive

  # Archive by vanity name without asking
  vinearchive archive testuser --yes

  # Archive by user ID into a specific directory with 10 workers
  vinearchive archive 912345678901234567 -o ./vines --concurrent 10 --yes

  # Only the profile, no posts
  vinearchive archive testuser --skip-posts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	addArchiveFlags(archiveCmd)
}

// addArchiveFlags registers the archive flags on cmd. The root command
// carries them too so "vinearchive <user>" works.
func addArchiveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&outputDir, "output", "o", "", "base directory for user folders (default: current directory)")
	f.IntVar(&concurrent, "concurrent", config.DefaultConcurrentPosts, "number of posts archived concurrently")
	f.DurationVar(&timeout, "timeout", 60*time.Second, "HTTP request timeout, 0 disables it")
	f.StringVar(&logFile, "log-file", "", "write logs as JSON to this file instead of the console")
	f.StringVar(&metricsTextfile, "metrics-textfile", "", "write run metrics in Prometheus textfile format to this path")
	f.StringVar(&archiveURL, "archive-url", "", "base URL of the Vine archive")
	f.StringVar(&apiURL, "api-url", "", "base URL of the live Vine service")
	f.BoolVarP(&assumeYes, "yes", "y", false, "download every post without asking")
	f.BoolVar(&skipPosts, "skip-posts", false, "archive only the profile")
	f.BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// commandLineFlags collects the flags the user actually set
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("concurrent") {
		flags["concurrent"] = concurrent
	}
	if changed("timeout") {
		flags["timeout"] = timeout
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}
	if changed("metrics-textfile") {
		flags["metrics-textfile"] = metricsTextfile
	}
	if changed("notify") {
		flags["notify"] = notify
	}
	if changed("archive-url") {
		flags["archive-url"] = archiveURL
	}
	if changed("api-url") {
		flags["api-url"] = apiURL
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if noColor {
		flags["no-color"] = true
	}

	return flags
}

func runArchive(cmd *cobra.Command, args []string) error {
	if assumeYes && skipPosts {
		return fmt.Errorf("--yes and --skip-posts cannot be used together")
	}

	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("vinearchive starting")

	prompter := ui.NewStdPrompter()

	var token string
	if len(args) > 0 {
		token = strings.TrimSpace(args[0])
	} else {
		token, err = prompter.PromptToken()
		if err != nil {
			return fmt.Errorf("no vanity or user ID given: %w", err)
		}
	}

	a, err := archiver.New(cfg, log)
	if err != nil {
		return err
	}

	report, err := a.Run(cmd.Context(), archiver.Options{
		Token: token,
		Confirm: func(archive *archiver.UserArchive) (bool, error) {
			printPostIDs(archive.PostIDs)
			switch {
			case skipPosts:
				return false, nil
			case assumeYes:
				return true, nil
			default:
				return prompter.Confirm(ui.DownloadPrompt)
			}
		},
	})
	if err != nil {
		log.WithError(err).WithField("token", token).Error("Archive failed")
	} else {
		printReport(report, a.Storage())
	}

	if cfg.Notify.Enabled {
		if nerr := announceRun(newNotifier(), token, report, err); nerr != nil {
			log.WithError(nerr).Warn("Could not send notification")
		}
	}

	return err
}

// newNotifier is replaced in tests
var newNotifier = ui.NewNotifier

// announceRun tells the desktop how the run ended
func announceRun(n *ui.Notifier, token string, report *archiver.Report, runErr error) error {
	if runErr != nil {
		return n.SendError("Vine archive failed", fmt.Sprintf("%s: %v", token, runErr))
	}

	msg := fmt.Sprintf("%s: profile saved", report.Archive.Profile.Username)
	if s := report.Summary; s != nil {
		msg = fmt.Sprintf("%s: %d of %d posts archived", report.Archive.Profile.Username, s.Archived, s.Total)
	}
	return n.SendSuccess("Vine archive finished", msg)
}

func printPostIDs(ids []vine.PostID) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	ui.PrintInfo(fmt.Sprintf("Collected %d post IDs", len(ids)), strings.Join(parts, ", "))
}

func printReport(report *archiver.Report, written *storage.Manager) {
	archive := report.Archive
	ui.PrintInfo("User", archive.Profile.Username)
	ui.PrintInfo("Folder", archive.Folder)
	ui.PrintInfo("Written", fmt.Sprintf("%d files, %s", written.FilesWritten(), ui.FormatBytes(written.BytesWritten())))

	if len(archive.PostIDs) == 0 {
		ui.PrintWarning("No posts found for the user.")
		return
	}

	s := report.Summary
	if s == nil {
		ui.PrintInfo("Posts", "skipped")
		return
	}

	ui.PrintSuccess(fmt.Sprintf("✓ Archived %d of %d posts in %s", s.Archived, s.Total, ui.FormatDuration(s.Duration)))
	ui.PrintInfo("  Thumbnails", fmt.Sprintf("%d", s.Thumbnails))
	ui.PrintInfo("  Videos", fmt.Sprintf("%d (%d posts without video)", s.Videos, s.NoVideo))

	if skipped := s.Total - s.Submitted; skipped > 0 {
		ui.PrintWarning(fmt.Sprintf("%d posts were not started", skipped))
	}
	for _, f := range s.Failures {
		ui.PrintWarning("Could not archive post "+f.PostID.String(), f.Err)
	}
}
