package server

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(Config{Port: 0, MaxWidth: 64, MaxSamples: 8, MaxDepth: 10}, zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RAYTRACER_SERVER_PORT", "9090")
	t.Setenv("RAYTRACER_SERVER_MAX_SAMPLES", "50")
	t.Setenv("RAYTRACER_SERVER_MAX_DEPTH", "7")
	// Render overrides share the prefix but not the names
	t.Setenv("RAYTRACER_MAX_DEPTH", "3")
	t.Setenv("RAYTRACER_MAX_SAMPLES", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50, cfg.MaxSamples)
	assert.Equal(t, 7, cfg.MaxDepth)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestScenes(t *testing.T) {
	ts := newTestServer(t)

	var body map[string][]string
	status := getJSON(t, ts.URL+"/api/scenes", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["scenes"], "default")
	assert.Contains(t, body["scenes"], "empty")
}

func TestRender_PNG(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render?scene=empty&width=16&samples=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Render-Id"))
	assert.Equal(t, "256", resp.Header.Get("X-Render-Samples"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestRender_WidthCappedToServerLimit(t *testing.T) {
	ts := newTestServer(t)

	// The default scene is 400 wide; this server allows 64
	resp, err := http.Get(ts.URL + "/api/render?scene=default&samples=1&depth=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 36, img.Bounds().Dy())
}

func TestRender_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"width too large", "scene=empty&width=65", http.StatusBadRequest},
		{"width not a number", "scene=empty&width=wide", http.StatusBadRequest},
		{"too many samples", "scene=empty&samples=9", http.StatusBadRequest},
		{"bad seed", "scene=empty&seed=x", http.StatusBadRequest},
		{"unknown scene", "scene=cornell", http.StatusNotFound},
		{"scene files are not served", "scene=../../etc/scene.yaml", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := getJSON(t, ts.URL+"/api/render?"+tt.query, &body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRenderStream(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render/stream?scene=empty&width=32&samples=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	var complete CompleteUpdate
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
			events = append(events, event)
		case strings.HasPrefix(line, "data: ") && event == "complete":
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &complete))
		}
	}
	require.NoError(t, scanner.Err())

	require.NotEmpty(t, events)
	assert.Equal(t, "complete", events[len(events)-1])
	for _, e := range events[:len(events)-1] {
		assert.Equal(t, "progress", e)
	}

	assert.NotEmpty(t, complete.RenderID)
	assert.Equal(t, 32, complete.Stats.Width)
	assert.Equal(t, 32*32, complete.Stats.TotalPixels)
	assert.Equal(t, 4, complete.Stats.Tiles)

	data, err := base64.StdEncoding.DecodeString(complete.ImageData)
	require.NoError(t, err)
	img, err := png.Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestInspect(t *testing.T) {
	ts := newTestServer(t)

	// The middle of the default view is the diffuse center sphere
	var hit InspectResponse
	status := getJSON(t, ts.URL+"/api/inspect?scene=default&width=64&x=32&y=18", &hit)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, hit.Hit)
	assert.Equal(t, "lambertian", hit.MaterialType)
	assert.Equal(t, "sphere", hit.GeometryType)
	assert.True(t, hit.FrontFace)
	assert.Greater(t, hit.Distance, 0.0)

	var miss InspectResponse
	status = getJSON(t, ts.URL+"/api/inspect?scene=empty&width=8&x=3&y=3", &miss)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, miss.Hit)
}

func TestInspect_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing x", "scene=empty&y=1", http.StatusBadRequest},
		{"bad y", "scene=empty&x=1&y=up", http.StatusBadRequest},
		{"out of bounds", "scene=empty&width=8&x=8&y=0", http.StatusBadRequest},
		{"negative", "scene=empty&width=8&x=-1&y=0", http.StatusBadRequest},
		{"unknown scene", "scene=nope&x=0&y=0", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := getJSON(t, ts.URL+"/api/inspect?"+tt.query, &body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRender_WrongMethod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/render", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
