package archiver

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"vinearchive/internal/downloader"
	"vinearchive/internal/metrics"
	"vinearchive/pkg/config"
	"vinearchive/pkg/errors"
	"vinearchive/pkg/logger"
	"vinearchive/pkg/storage"
	"vinearchive/pkg/summary"
	"vinearchive/pkg/ui"
	"vinearchive/pkg/vine"
)

// PostResult is the outcome of archiving one post
type PostResult = downloader.Result

// Archiver orchestrates the archive of one user
type Archiver struct {
	client      VineClient
	storage     *storage.Manager
	metrics     metrics.RecorderInterface
	config      *config.Config
	logger      logger.Logger
	progressOut io.Writer
	redraw      bool
}

// UserArchive is what Prepare establishes before any post is downloaded
type UserArchive struct {
	Profile *vine.Profile
	Folder  string
	PostIDs []vine.PostID
}

// Options configures one run. Confirm, when set, is asked once the post IDs
// are known and overrides DownloadPosts.
type Options struct {
	Token         string
	DownloadPosts bool
	Confirm       func(archive *UserArchive) (bool, error)
}

// Report is the outcome of Run. Summary is nil when posts were not downloaded.
type Report struct {
	Archive *UserArchive
	Summary *Summary
}

// PostFailure records why a post could not be archived
type PostFailure struct {
	PostID vine.PostID
	Err    error
}

// Summary aggregates the results of ArchivePosts
type Summary struct {
	Total      int
	Submitted  int
	Archived   int
	Failed     int
	Thumbnails int
	Videos     int
	NoVideo    int
	Failures   []PostFailure
	Duration   time.Duration
}

// New creates an Archiver wired to the Vine endpoints and output directory
// from cfg
func New(cfg *config.Config, log logger.Logger) (*Archiver, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client := vine.NewClient(&cfg.Vine, cfg.Download.Timeout, log)

	storageManager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return NewWithClient(cfg, client, storageManager, metrics.NewRecorder(cfg.Metrics.Textfile), log), nil
}

// NewWithClient creates an Archiver from already built parts
func NewWithClient(cfg *config.Config, client VineClient, storageManager *storage.Manager, recorder metrics.RecorderInterface, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	if recorder == nil {
		recorder = metrics.NewRecorder("")
	}

	return &Archiver{
		client:      client,
		storage:     storageManager,
		metrics:     recorder,
		config:      cfg,
		logger:      log,
		progressOut: ui.Output(),
		redraw:      ui.IsTerminal(os.Stdout),
	}
}

// SetProgressOutput sets where the submission progress line is drawn
func (a *Archiver) SetProgressOutput(w io.Writer, redraw bool) {
	a.progressOut = w
	a.redraw = redraw
}

// Storage returns the storage manager
func (a *Archiver) Storage() *storage.Manager {
	return a.storage
}

// Run archives the user named by opts.Token
func (a *Archiver) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	defer func() {
		a.metrics.SetRunDuration(time.Since(start))
		if err := a.metrics.Flush(); err != nil {
			a.logger.WithError(err).Warn("Failed to write metrics textfile")
		}
	}()

	archive, err := a.Prepare(ctx, opts.Token)
	if err != nil {
		return nil, err
	}

	report := &Report{Archive: archive}

	if len(archive.PostIDs) == 0 {
		a.logger.WithField("username", archive.Profile.Username).Info("No posts found for the user")
		return report, nil
	}

	download := opts.DownloadPosts
	if opts.Confirm != nil {
		download, err = opts.Confirm(archive)
		if err != nil {
			return report, fmt.Errorf("failed to read confirmation: %w", err)
		}
	}

	if !download {
		a.logger.WithField("username", archive.Profile.Username).Info("Skipping post downloads")
		return report, nil
	}

	report.Summary = a.ArchivePosts(ctx, archive.Folder, archive.PostIDs)
	return report, nil
}

// Prepare resolves the token, builds the user folder and collects post IDs
func (a *Archiver) Prepare(ctx context.Context, token string) (*UserArchive, error) {
	profile, err := a.client.ResolveProfile(ctx, token)
	if err != nil {
		a.logger.WithError(err).WithField("token", token).Error("Failed to resolve user")
		return nil, err
	}

	a.logger.InfoWithFields("Resolved user", map[string]interface{}{
		"username": profile.Username,
		"user_id":  profile.ID(),
	})

	folder, err := a.BuildUserArchive(ctx, profile)
	if err != nil {
		return nil, err
	}

	postIDs := CollectPostIDs(profile)
	a.logger.InfoWithFields("Collected post IDs", map[string]interface{}{
		"username": profile.Username,
		"posts":    len(postIDs),
	})

	return &UserArchive{
		Profile: profile,
		Folder:  folder,
		PostIDs: postIDs,
	}, nil
}

// CollectPostIDs returns the profile's post IDs in order, never nil
func CollectPostIDs(profile *vine.Profile) []vine.PostID {
	if profile == nil || len(profile.Posts) == 0 {
		return []vine.PostID{}
	}
	ids := make([]vine.PostID, len(profile.Posts))
	copy(ids, profile.Posts)
	return ids
}

// BuildUserArchive creates the user folder, downloads the avatar and writes
// the user info file. It returns the folder path.
func (a *Archiver) BuildUserArchive(ctx context.Context, profile *vine.Profile) (string, error) {
	const op = "build user archive"

	username := profile.Username
	if username == "" {
		return "", errors.New(errors.ErrorTypeInvalidInput, op, "profile has no username", errors.ErrInvalidInput)
	}

	log := a.logger.WithField("username", username)

	folder, err := a.storage.UserFolder(username)
	if err != nil {
		log.WithError(err).Error("Failed to create user folder")
		return "", err
	}
	log.WithField("folder", folder).Info("Created folder for user")

	if profile.AvatarURL != "" {
		if a.downloadAsset(ctx, metrics.AssetAvatar, profile.AvatarURL, folder, storage.AvatarFile(username)) {
			log.Debug("Downloaded avatar")
		}
	}

	info := a.client.FetchUserInfo(ctx, profile.UserIDStr)
	if info.IsEmpty() {
		log.Debug("No auxiliary user info, writing N/A placeholders")
	}

	if err := a.storage.WriteText(folder, storage.UserInfoFile(username), summary.FormatUserInfo(profile, info)); err != nil {
		a.metrics.IncAssets(metrics.AssetInfo, metrics.StatusFailed)
		log.WithError(err).Error("Failed to write user info file")
		return "", err
	}
	a.metrics.IncAssets(metrics.AssetInfo, metrics.StatusOK)

	return folder, nil
}

// ArchivePosts archives every post on a fixed-size worker pool and waits for
// all of them. The progress line advances as posts are submitted.
func (a *Archiver) ArchivePosts(ctx context.Context, folder string, postIDs []vine.PostID) *Summary {
	result := &Summary{Total: len(postIDs)}
	progress := ui.NewProgressDisplay(a.progressOut, "Downloading posts", len(postIDs), a.redraw)

	pool := downloader.NewWorkerPool(ctx, a.config.Download.ConcurrentPosts, a, a.logger)
	pool.Start()

	a.logger.DebugWithFields("Archiving posts", map[string]interface{}{
		"posts":   len(postIDs),
		"workers": pool.GetActiveWorkers(),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.collectResults(pool.Results(), result)
	}()

	for _, id := range postIDs {
		if err := pool.Submit(downloader.Job{PostID: id, Folder: folder}); err != nil {
			a.logger.WithError(err).WithField("post_id", id.String()).Warn("Stopped submitting posts")
			break
		}
		result.Submitted++
		progress.Advance(id.String())
	}

	a.logger.DebugWithFields("All posts submitted", map[string]interface{}{
		"submitted": result.Submitted,
		"queued":    pool.GetQueueSize(),
	})

	pool.Stop()
	wg.Wait()
	progress.Complete()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].PostID < result.Failures[j].PostID
	})
	result.Duration = progress.Elapsed()

	a.logger.InfoWithFields("Finished archiving posts", map[string]interface{}{
		"submitted": result.Submitted,
		"archived":  result.Archived,
		"failed":    result.Failed,
		"duration":  result.Duration,
	})

	return result
}

// collectResults owns the summary while the pool runs
func (a *Archiver) collectResults(results <-chan downloader.Result, s *Summary) {
	for r := range results {
		a.metrics.ObservePostDuration(r.Duration)

		if !r.Success {
			s.Failed++
			s.Failures = append(s.Failures, PostFailure{PostID: r.PostID, Err: r.Error})
			a.metrics.IncPosts(metrics.StatusFailed)
			continue
		}

		s.Archived++
		a.metrics.IncPosts(metrics.StatusOK)
		if r.Thumbnail {
			s.Thumbnails++
		}
		if r.Video {
			s.Videos++
		}
		if !r.HasVideo {
			s.NoVideo++
		}
	}
}

// ArchivePost fetches one post record and writes its folder. Nothing is
// written when the record cannot be fetched. Thumbnail and video failures
// do not fail the post.
func (a *Archiver) ArchivePost(ctx context.Context, postID vine.PostID, userFolder string) PostResult {
	id := postID.String()
	result := PostResult{PostID: postID}
	log := a.logger.WithField("post_id", id)

	post, err := a.client.FetchPost(ctx, postID)
	if err != nil {
		log.WithError(err).Warn("Could not retrieve data for post")
		result.Error = err
		return result
	}

	postFolder, err := a.storage.PostFolder(userFolder, id)
	if err != nil {
		log.WithError(err).Error("Failed to create post folder")
		result.Error = err
		return result
	}
	log.Debug("Created folder for post")

	if post.ThumbnailURL != "" {
		result.Thumbnail = a.downloadAsset(ctx, metrics.AssetThumbnail, post.ThumbnailURL, postFolder, storage.ThumbnailFile(id))
	} else {
		a.metrics.IncAssets(metrics.AssetThumbnail, metrics.StatusAbsent)
		log.Warn("post has no thumbnail URL")
	}

	if video := post.Video(); video != "" {
		result.HasVideo = true
		result.Video = a.downloadAsset(ctx, metrics.AssetVideo, video, postFolder, storage.VideoFile(id))
	} else {
		a.metrics.IncAssets(metrics.AssetVideo, metrics.StatusAbsent)
		log.Info("post has no video URL")
	}

	if err := a.storage.WriteText(postFolder, storage.PostInfoFile(id), summary.FormatPost(post)); err != nil {
		a.metrics.IncAssets(metrics.AssetInfo, metrics.StatusFailed)
		log.WithError(err).Error("Failed to write post info file")
		result.Error = err
		return result
	}
	a.metrics.IncAssets(metrics.AssetInfo, metrics.StatusOK)

	result.Success = true
	return result
}

func (a *Archiver) downloadAsset(ctx context.Context, kind, url, folder, filename string) bool {
	if a.DownloadFile(ctx, url, folder, filename) {
		a.metrics.IncAssets(kind, metrics.StatusOK)
		return true
	}
	a.metrics.IncAssets(kind, metrics.StatusFailed)
	return false
}

// DownloadFile writes the body of url to folder/filename when the response
// is 200. Any failure leaves no file behind and only reports false.
func (a *Archiver) DownloadFile(ctx context.Context, url, folder, filename string) bool {
	body, err := a.client.OpenAsset(ctx, url)
	if err != nil {
		a.logger.DebugWithFields("Asset not downloaded", map[string]interface{}{
			"url":   url,
			"file":  filename,
			"error": err.Error(),
		})
		return false
	}
	defer body.Close()

	n, err := a.storage.SaveFile(folder, filename, body)
	if err != nil {
		a.logger.WithError(err).WithField("file", filename).Warn("Failed to save asset")
		return false
	}

	a.metrics.AddBytes(n)
	return true
}
