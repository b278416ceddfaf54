package vine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"vinearchive/pkg/config"
	"vinearchive/pkg/errors"
	"vinearchive/pkg/logger"
)

// maxDrainBytes bounds how much of an error body is read before closing
const maxDrainBytes = 64 << 10

// Client talks to the Vine archive mirror and the live profile service
type Client struct {
	httpClient     *http.Client
	headers        map[string]string
	archiveBaseURL string
	apiBaseURL     string
	logger         logger.Logger
}

// NewClient creates a client for the configured endpoints.
// A zero timeout leaves requests bounded only by their context.
func NewClient(cfg *config.VineConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	headers := map[string]string{
		"Accept":          "application/json, */*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		headers:        headers,
		archiveBaseURL: cfg.ArchiveBaseURL,
		apiBaseURL:     cfg.APIBaseURL,
		logger:         log,
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, err
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// get issues a GET and returns the response only when the status is 200.
// sentinel classifies every failure so callers can match it with errors.Is.
func (c *Client) get(ctx context.Context, op, url string, sentinel error) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, op, "failed to create request", errors.Join(sentinel, err))
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, op, "request failed", errors.Join(sentinel, err))
	}

	if resp.StatusCode != http.StatusOK {
		io.CopyN(io.Discard, resp.Body, maxDrainBytes)
		resp.Body.Close()
		return nil, errors.StatusError(op, resp.StatusCode, sentinel)
	}

	return resp, nil
}

// getJSON performs a GET and decodes a 200 response body into target
func (c *Client) getJSON(ctx context.Context, op, url string, sentinel error, target interface{}) error {
	resp, err := c.get(ctx, op, url, sentinel)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return errors.New(errors.ErrorTypeParsing, op, "failed to parse JSON", errors.Join(sentinel, err))
	}

	return nil
}

// ResolveProfile turns a vanity name or numeric user ID into a profile.
// Numeric tokens go straight to the archive without a vanity lookup.
func (c *Client) ResolveProfile(ctx context.Context, token string) (*Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "resolve profile", "empty vanity or user ID", errors.ErrInvalidInput)
	}

	if IsNumericID(token) {
		return c.FetchProfile(ctx, token)
	}

	userID, err := c.LookupVanity(ctx, token)
	if err != nil {
		return nil, err
	}

	return c.FetchProfile(ctx, userID)
}

// LookupVanity maps a vanity name to a numeric user ID via the live service
func (c *Client) LookupVanity(ctx context.Context, vanity string) (string, error) {
	const op = "lookup vanity"

	var result envelope[vanityLookup]
	if err := c.getJSON(ctx, op, VanityURL(c.apiBaseURL, vanity), errors.ErrLookupFailed, &result); err != nil {
		c.logger.WithError(err).WithField("vanity", vanity).Warn("vanity lookup failed")
		return "", err
	}

	userID := result.Data.id()
	if userID == "" {
		return "", errors.New(errors.ErrorTypeParsing, op, "response carries no user ID", errors.ErrLookupFailed)
	}

	c.logger.DebugWithFields("resolved vanity", map[string]interface{}{
		"vanity":  vanity,
		"user_id": userID,
	})

	return userID, nil
}

// FetchProfile fetches the archived profile record and rewrites its
// creation timestamp into display form.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	const op = "fetch profile"

	var profile Profile
	if err := c.getJSON(ctx, op, ProfileURL(c.archiveBaseURL, userID), errors.ErrFetchFailed, &profile); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("profile fetch failed")
		return nil, err
	}

	if profile.Created != "" {
		created, err := FormatCreated(profile.Created)
		if err != nil {
			return nil, errors.New(errors.ErrorTypeParsing, op, fmt.Sprintf("malformed created timestamp %q", profile.Created), err)
		}
		profile.Created = created
	}

	return &profile, nil
}

// FetchUserInfo fetches the auxiliary record from the live service.
// It never fails: any problem yields the empty record.
func (c *Client) FetchUserInfo(ctx context.Context, userID string) UserInfo {
	if userID == "" {
		return UserInfo{}
	}

	var result envelope[UserInfo]
	if err := c.getJSON(ctx, "fetch user info", UserInfoURL(c.apiBaseURL, userID), errors.ErrFetchFailed, &result); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Debug("auxiliary user info unavailable")
		return UserInfo{}
	}

	return result.Data
}

// FetchPost fetches the archived record of one post
func (c *Client) FetchPost(ctx context.Context, postID PostID) (*Post, error) {
	var post Post
	if err := c.getJSON(ctx, "fetch post", PostURL(c.archiveBaseURL, postID), errors.ErrFetchFailed, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// OpenAsset starts downloading a binary asset. The caller closes the body.
// Any status other than 200 is an error.
func (c *Client) OpenAsset(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, "download asset", url, errors.ErrFetchFailed)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
