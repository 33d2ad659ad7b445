package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mesyatsya/converter/internal/handler"
	"github.com/mesyatsya/converter/internal/media"
	"github.com/mesyatsya/converter/internal/middleware"
	"github.com/mesyatsya/converter/internal/model"
	"github.com/mesyatsya/converter/internal/registry"
	"github.com/mesyatsya/converter/internal/service"
	"github.com/mesyatsya/converter/internal/worker"
	ws "github.com/mesyatsya/converter/internal/websocket"
)

const testSessionSecret = "test-secret-for-e2e"

// copyTranscoder stands in for ffmpeg: it copies the input bytes to the
// output path and reports success.
type copyTranscoder struct{}

func (copyTranscoder) Transcode(_ context.Context, inputPath, outputPath, _ string) (bool, string) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return false, err.Error()
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// failingTranscoder stands in for an encoder that rejects its input.
type failingTranscoder struct{}

func (failingTranscoder) Transcode(_ context.Context, _, _, _ string) (bool, string) {
	return false, "Invalid data found when processing input"
}

// stubProber avoids a real ffprobe dependency in tests.
type stubProber struct{}

func (stubProber) Probe(_ context.Context, _ string) *model.MediaInfo {
	return &model.MediaInfo{Duration: 5, Size: 1024, FormatName: "mov", VideoCodec: "h264", AudioCodec: "aac"}
}

// testApp holds all components needed for testing.
type testApp struct {
	app      *fiber.App
	registry *registry.Registry
}

// setupApp creates a Fiber app wired like main.go but with the external
// tools replaced by in-process stubs.
func setupApp(t *testing.T, transcoder worker.Transcoder) *testApp {
	t.Helper()

	uploadDir := t.TempDir()
	convertedDir := t.TempDir()

	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	jobs := registry.New()
	runner := worker.NewRunner(jobs, transcoder, hub)
	pool := worker.NewPool(2, 16, runner)
	t.Cleanup(pool.Shutdown)

	fileValidator := media.NewValidator(media.DefaultExtensions)
	convertService := service.NewConvertService(jobs, stubProber{}, pool, fileValidator, uploadDir, convertedDir)

	session := middleware.NewSessionManager(testSessionSecret)
	convertHandler := handler.NewConvertHandler(convertService, validate, session, 50*1024*1024)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/formats", convertHandler.Formats)
	api.Get("/jobs/current", convertHandler.Current)

	convert := api.Group("/convert")
	convert.Post("/", convertHandler.Start)
	convert.Get("/:taskId", convertHandler.Job)
	convert.Get("/:taskId/status", convertHandler.Status)
	convert.Get("/:taskId/download", convertHandler.Download)
	convert.Delete("/:taskId", convertHandler.Cleanup)

	return &testApp{app: app, registry: jobs}
}

// createUploadRequest builds a multipart/form-data request with a fake video file.
func createUploadRequest(t *testing.T, filename, format string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if format != "" {
		_ = writer.WriteField("format", format)
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, "/api/convert/", &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// pollUntilTerminal polls the status endpoint until the job leaves
// processing or the deadline passes.
func pollUntilTerminal(t *testing.T, ta *testApp, taskID string) model.JobStatus {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequest(http.MethodGet, "/api/convert/"+taskID+"/status", nil)
		resp, err := ta.app.Test(req, -1)
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		result := parseJSON(t, resp)
		status := model.JobStatus(result["status"].(string))
		if status.Terminal() {
			return status
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return ""
}

// readBody reads and returns the response body.
func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return b
}

// parseJSON parses a response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
