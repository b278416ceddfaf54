package vine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vinearchive/pkg/config"
	"vinearchive/pkg/errors"
	"vinearchive/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

// Helper function to create a response
func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// newTestClient routes archive and live requests to two test servers
func newTestClient(t *testing.T, archive, api http.Handler) (*Client, *logger.TestLogger) {
	t.Helper()

	archiveSrv := httptest.NewServer(archive)
	t.Cleanup(archiveSrv.Close)
	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	log := logger.NewTestLogger()
	client := NewClient(&config.VineConfig{
		ArchiveBaseURL: archiveSrv.URL,
		APIBaseURL:     apiSrv.URL,
		UserAgent:      "vinearchive-test",
	}, 5*time.Second, log)

	return client, log
}

func jsonHandler(routes map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(&config.VineConfig{
		ArchiveBaseURL: config.DefaultArchiveBaseURL,
		APIBaseURL:     config.DefaultAPIBaseURL,
		UserAgent:      "agent/1.0",
	}, 30*time.Second, log)

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, "agent/1.0", client.headers["User-Agent"])
	assert.Equal(t, config.DefaultArchiveBaseURL, client.archiveBaseURL)
}

func TestResolveProfileNumericSkipsLookup(t *testing.T) {
	var lookups int32
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&lookups, 1)
		http.NotFound(w, r)
	})
	archive := jsonHandler(map[string]string{
		"/profiles/_/123.json": `{"userId": 123, "username": "testuser", "created": "2021-01-02T03:04:05.678", "posts": ["a", "b"]}`,
	})

	client, _ := newTestClient(t, archive, api)

	profile, err := client.ResolveProfile(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "testuser", profile.Username)
	assert.Equal(t, "123", profile.ID())
	assert.Equal(t, "January 02, 2021 03:04:05 AM", profile.Created)
	assert.Equal(t, []PostID{"a", "b"}, profile.Posts)
	assert.Zero(t, atomic.LoadInt32(&lookups))
}

func TestResolveProfileVanity(t *testing.T) {
	api := jsonHandler(map[string]string{
		"/api/users/profiles/vanity/testuser": `{"data": {"userIdStr": "123", "userId": 123}}`,
	})
	archive := jsonHandler(map[string]string{
		"/profiles/_/123.json": `{"userIdStr": "123", "username": "testuser"}`,
	})

	client, _ := newTestClient(t, archive, api)

	profile, err := client.ResolveProfile(context.Background(), "  testuser\n")
	require.NoError(t, err)
	assert.Equal(t, "testuser", profile.Username)
	assert.Empty(t, profile.Posts)
}

func TestResolveProfileLookupFailed(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, log := newTestClient(t, jsonHandler(nil), api)

	_, err := client.ResolveProfile(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLookupFailed))
	assert.False(t, errors.Is(err, errors.ErrFetchFailed))
	assert.Equal(t, errors.ErrorTypeStatus, errors.TypeOf(err))
	assert.True(t, log.HasMessage("vanity lookup failed"))
}

func TestResolveProfileEmptyToken(t *testing.T) {
	client, _ := newTestClient(t, jsonHandler(nil), jsonHandler(nil))

	_, err := client.ResolveProfile(context.Background(), "   ")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestLookupVanityMissingID(t *testing.T) {
	api := jsonHandler(map[string]string{
		"/api/users/profiles/vanity/ghost": `{"data": {}}`,
	})
	client, _ := newTestClient(t, jsonHandler(nil), api)

	_, err := client.LookupVanity(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errors.ErrLookupFailed))
	assert.Equal(t, errors.ErrorTypeParsing, errors.TypeOf(err))
}

func TestFetchProfileFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		errType  errors.ErrorType
		sentinel error
	}{
		{"not found", http.StatusNotFound, "", errors.ErrorTypeNotFound, errors.ErrFetchFailed},
		{"server error", http.StatusBadGateway, "", errors.ErrorTypeStatus, errors.ErrFetchFailed},
		{"bad json", http.StatusOK, "{not json", errors.ErrorTypeParsing, errors.ErrFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			client, _ := newTestClient(t, archive, jsonHandler(nil))

			profile, err := client.FetchProfile(context.Background(), "123")
			assert.Nil(t, profile)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.errType, errors.TypeOf(err))
		})
	}
}

func TestFetchProfileMalformedCreated(t *testing.T) {
	archive := jsonHandler(map[string]string{
		"/profiles/_/123.json": `{"username": "testuser", "created": "yesterday"}`,
	})
	client, _ := newTestClient(t, archive, jsonHandler(nil))

	_, err := client.FetchProfile(context.Background(), "123")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeParsing, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "yesterday")
}

func TestFetchUserInfo(t *testing.T) {
	api := jsonHandler(map[string]string{
		"/api/users/profiles/123": `{"data": {"followerCount": 42, "description": "hi", "location": "NYC", "loopCount": 1000}}`,
	})
	client, _ := newTestClient(t, jsonHandler(nil), api)

	info := client.FetchUserInfo(context.Background(), "123")
	assert.False(t, info.IsEmpty())
	assert.Equal(t, "hi", info.Description)
	assert.Equal(t, json.Number("42"), info.FollowerCount)
}

func TestFetchUserInfoNeverFails(t *testing.T) {
	var calls int32
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client, _ := newTestClient(t, jsonHandler(nil), api)

	assert.True(t, client.FetchUserInfo(context.Background(), "123").IsEmpty())
	assert.True(t, client.FetchUserInfo(context.Background(), "").IsEmpty())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPost(t *testing.T) {
	archive := jsonHandler(map[string]string{
		"/posts/a.json": `{"description": "first", "likes": 3, "entities": [{"title": "Hello"}], "thumbnailUrl": "http://x/t.jpg", "videoLowURL": "http://x/v.mp4"}`,
	})
	client, _ := newTestClient(t, archive, jsonHandler(nil))

	post, err := client.FetchPost(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "first", post.Description)
	assert.Equal(t, "Hello", post.Title())
	assert.Equal(t, "http://x/v.mp4", post.Video())

	_, err = client.FetchPost(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
}

func TestOpenAsset(t *testing.T) {
	assets := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.jpg" {
			_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(assets)
	defer srv.Close()

	client, _ := newTestClient(t, jsonHandler(nil), jsonHandler(nil))

	body, err := client.OpenAsset(context.Background(), srv.URL+"/ok.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, body.Close())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	_, err = client.OpenAsset(context.Background(), srv.URL+"/nope.jpg")
	assert.Equal(t, errors.ErrorTypeStatus, errors.TypeOf(err))
}

func TestNetworkErrorJoinsSentinel(t *testing.T) {
	client, log := newTestClient(t, jsonHandler(nil), jsonHandler(nil))
	client.httpClient = &http.Client{Transport: &mockRoundTripper{
		handler: func(req *http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}}

	_, err := client.LookupVanity(context.Background(), "testuser")
	assert.True(t, errors.Is(err, errors.ErrLookupFailed))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, errors.ErrorTypeNetwork, errors.TypeOf(err))
	assert.True(t, log.HasMessage("HTTP request failed"))
}

func TestHeadersAreSent(t *testing.T) {
	var seen http.Header
	client, _ := newTestClient(t, jsonHandler(nil), jsonHandler(nil))
	client.httpClient = &http.Client{Transport: &mockRoundTripper{
		handler: func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Clone()
			return newResponse(http.StatusOK, `{"username": "u"}`), nil
		},
	}}

	_, err := client.FetchProfile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "vinearchive-test", seen.Get("User-Agent"))
	assert.Contains(t, seen.Get("Accept"), "application/json")
}

func TestContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, jsonHandler(nil), jsonHandler(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPost(ctx, "a")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
}

// countingBody records how much of a response body was consumed
type countingBody struct {
	r      io.Reader
	read   int64
	closed bool
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	return n, err
}

func (b *countingBody) Close() error {
	b.closed = true
	return nil
}

func TestErrorBodyDrainIsBounded(t *testing.T) {
	body := &countingBody{r: bytes.NewReader(make([]byte, 8<<20))}
	client, _ := newTestClient(t, jsonHandler(nil), jsonHandler(nil))
	client.httpClient = &http.Client{Transport: &mockRoundTripper{
		handler: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       body,
				Header:     make(http.Header),
			}, nil
		},
	}}

	_, err := client.FetchPost(context.Background(), "a")
	assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	assert.True(t, body.closed)
	assert.LessOrEqual(t, body.read, int64(maxDrainBytes))
}
