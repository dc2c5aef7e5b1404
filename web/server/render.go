package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/df07/go-raytracer/pkg/renderer"
	"github.com/df07/go-raytracer/pkg/scene"
)

// errUnknownScene marks a request for a scene that is not built in
var errUnknownScene = errors.New("unknown scene")

// RenderRequest holds the query parameters of a render. Zero values keep
// the scene's own setting; Depth uses -1 for that.
type RenderRequest struct {
	Scene   string
	Width   int
	Samples int
	Depth   int
	Seed    int64
}

// ProgressUpdate is sent as an SSE "progress" event after finished tiles
type ProgressUpdate struct {
	TilesDone  int   `json:"tilesDone"`
	TilesTotal int   `json:"tilesTotal"`
	ElapsedMs  int64 `json:"elapsedMs"`
}

// CompleteUpdate is the final SSE "complete" event
type CompleteUpdate struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	Tiles          int     `json:"tiles"`
	Workers        int     `json:"workers"`
}

// parseRenderRequest parses and bounds-checks the render query parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, s.config.MaxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(values, "depth", -1, 0, s.config.MaxDepth); err != nil {
		return nil, err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene loads a built-in scene and applies the request overrides.
// Scene files are never read on behalf of a client.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	if !slices.Contains(scene.Names(), req.Scene) {
		return nil, fmt.Errorf("%w: %s", errUnknownScene, req.Scene)
	}
	sc, err := scene.Load(req.Scene)
	if err != nil {
		return nil, err
	}

	if req.Width > 0 {
		sc.Camera.ImageWidth = req.Width
	}
	if req.Samples > 0 {
		sc.Camera.SamplesPerPixel = req.Samples
	}
	if req.Depth >= 0 {
		sc.Camera.MaxDepth = req.Depth
	}
	if req.Seed != 0 {
		sc.Camera.Seed = req.Seed
	}
	if sc.Camera.ImageWidth > s.config.MaxWidth {
		sc.Camera.ImageWidth = s.config.MaxWidth
	}
	return sc, nil
}

// prepareRender turns a request into a scene and a camera, writing an error
// response and returning ok=false when it cannot
func (s *Server) prepareRender(w http.ResponseWriter, r *http.Request) (*scene.Scene, *renderer.Camera, bool) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return nil, nil, false
	}

	sc, err := s.createScene(req)
	if errors.Is(err, errUnknownScene) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}

	camera, err := renderer.NewCamera(sc.Camera)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return sc, camera, true
}

// handleRender renders a scene and responds with the PNG image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sc, camera, ok := s.prepareRender(w, r)
	if !ok {
		return
	}

	renderID := uuid.New()
	logger := s.renderLogger(renderID, sc.Name)
	camera.SetLogger(logger)

	img, stats, err := camera.RenderContext(r.Context(), sc.World, nil)
	if err != nil {
		s.renderFailed(r.Context(), w, logger, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Error().Err(err).Msg("encode png")
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Id", renderID.String())
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderStream renders a scene while streaming tile progress with SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	sc, camera, ok := s.prepareRender(w, r)
	if !ok {
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	renderID := uuid.New()
	logger := s.renderLogger(renderID, sc.Name)
	camera.SetLogger(logger)

	type result struct {
		img   *image.RGBA
		stats renderer.RenderStats
		err   error
	}

	startTime := time.Now()
	progress := make(chan ProgressUpdate, 16)
	done := make(chan result, 1)

	go func() {
		img, stats, err := camera.RenderContext(r.Context(), sc.World, func(tilesDone, total int) {
			update := ProgressUpdate{
				TilesDone:  tilesDone,
				TilesTotal: total,
				ElapsedMs:  time.Since(startTime).Milliseconds(),
			}
			// Drop updates rather than stall the workers
			select {
			case progress <- update:
			default:
			}
		})
		done <- result{img: img, stats: stats, err: err}
	}()

	for {
		select {
		case update := <-progress:
			if err := s.sendSSEEvent(w, "progress", update); err != nil {
				logger.Debug().Err(err).Msg("send progress")
			}

		case res := <-done:
			if res.err != nil {
				if r.Context().Err() == nil {
					logger.Error().Err(res.err).Msg("render failed")
					s.sendSSEEvent(w, "error", map[string]string{"error": res.err.Error()})
				}
				return
			}

			imageData, err := imageToBase64PNG(res.img)
			if err != nil {
				s.sendSSEEvent(w, "error", map[string]string{"error": "failed to encode image"})
				return
			}
			s.sendSSEEvent(w, "complete", CompleteUpdate{
				RenderID:  renderID.String(),
				ImageData: imageData,
				Stats:     newStats(res.img, res.stats),
				ElapsedMs: time.Since(startTime).Milliseconds(),
			})
			return
		}
	}
}

func (s *Server) renderLogger(renderID uuid.UUID, sceneName string) zerolog.Logger {
	return s.logger.With().
		Str("render", renderID.String()).
		Str("scene", sceneName).
		Logger()
}

// renderFailed reports a render error unless the client already went away
func (s *Server) renderFailed(ctx context.Context, w http.ResponseWriter, logger zerolog.Logger, err error) {
	if ctx.Err() != nil {
		logger.Debug().Err(err).Msg("render cancelled by client")
		return
	}
	logger.Error().Err(err).Msg("render failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) sendSSEEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return http.NewResponseController(w).Flush()
}

func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func newStats(img image.Image, stats renderer.RenderStats) Stats {
	return Stats{
		Width:          img.Bounds().Dx(),
		Height:         img.Bounds().Dy(),
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   stats.TotalSamples,
		AverageSamples: stats.AverageSamples(),
		Tiles:          stats.Tiles,
		Workers:        stats.Workers,
	}
}
