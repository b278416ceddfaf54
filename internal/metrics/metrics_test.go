package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_WhenNoTextfile(t *testing.T) {
	r := NewRecorder("")
	_, ok := r.(*noopRecorder)
	assert.True(t, ok, "should return noopRecorder without a textfile")

	// Ensure no-op methods don't panic
	r.IncPosts(StatusOK)
	r.IncAssets(AssetVideo, StatusAbsent)
	r.AddBytes(10)
	r.ObservePostDuration(time.Millisecond)
	r.SetRunDuration(time.Second)
	assert.NoError(t, r.Flush())
}

func counterValue(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := r.registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestRecorder_WhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vinearchive.prom")

	r, ok := NewRecorder(path).(*Recorder)
	require.True(t, ok)

	r.IncPosts(StatusOK)
	r.IncPosts(StatusOK)
	r.IncPosts(StatusFailed)
	r.IncAssets(AssetThumbnail, StatusOK)
	r.IncAssets(AssetVideo, StatusAbsent)
	r.AddBytes(2048)
	r.AddBytes(-1)
	r.ObservePostDuration(150 * time.Millisecond)
	r.SetRunDuration(3 * time.Second)

	assert.Equal(t, 2.0, counterValue(t, r, "vinearchive_posts_total", map[string]string{"status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, r, "vinearchive_posts_total", map[string]string{"status": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, r, "vinearchive_assets_total", map[string]string{"kind": "video", "status": "absent"}))
	assert.Equal(t, 2048.0, counterValue(t, r, "vinearchive_downloaded_bytes_total", map[string]string{}))

	require.NoError(t, r.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `vinearchive_posts_total{status="ok"} 2`)
	assert.Contains(t, content, "vinearchive_run_duration_seconds 3")
	assert.Contains(t, content, "vinearchive_post_duration_seconds_count 1")
}
