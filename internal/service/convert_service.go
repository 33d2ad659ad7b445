package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mesyatsya/converter/internal/media"
	"github.com/mesyatsya/converter/internal/model"
	"github.com/mesyatsya/converter/internal/registry"
)

// Validation and lookup errors surfaced to the HTTP layer.
var (
	ErrNoFile                = errors.New("no file provided")
	ErrUnsupportedFormat     = errors.New("unsupported output format")
	ErrDisallowedExtension   = errors.New("file extension not allowed")
	ErrTaskNotFound          = errors.New("task not found")
	ErrConversionNotFinished = errors.New("conversion not finished")
	ErrOutputMissing         = errors.New("output file not found")
)

// Prober extracts media metadata from an uploaded file. A nil result means
// metadata is unavailable.
type Prober interface {
	Probe(ctx context.Context, path string) *model.MediaInfo
}

// Dispatcher schedules a created job for background conversion.
type Dispatcher interface {
	Enqueue(taskID string)
}

// ConvertService owns the conversion pipeline: it gates uploads, stores the
// input under a server-minted name, probes it, registers the job and hands
// it to the dispatcher.
type ConvertService struct {
	registry     *registry.Registry
	prober       Prober
	dispatcher   Dispatcher
	validator    *media.Validator
	uploadDir    string
	convertedDir string
}

// NewConvertService wires the conversion pipeline.
func NewConvertService(reg *registry.Registry, prober Prober, dispatcher Dispatcher, validator *media.Validator, uploadDir, convertedDir string) *ConvertService {
	return &ConvertService{
		registry:     reg,
		prober:       prober,
		dispatcher:   dispatcher,
		validator:    validator,
		uploadDir:    uploadDir,
		convertedDir: convertedDir,
	}
}

// StartConversion accepts an upload and returns the new task. The input and
// output paths are built from the minted task ID plus catalog-trusted
// extensions; the user-supplied filename is kept only for display and for
// the suggested download name.
func (s *ConvertService) StartConversion(ctx context.Context, file io.Reader, originalFilename, formatID string) (*model.ConvertStartResponse, error) {
	if originalFilename == "" {
		return nil, ErrNoFile
	}
	format, ok := media.LookupFormat(formatID)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	if !s.validator.IsAllowed(originalFilename) {
		return nil, ErrDisallowedExtension
	}

	taskID := uuid.New().String()
	inputPath := filepath.Join(s.uploadDir, taskID+"."+media.Ext(originalFilename))
	outputFilename := taskID + "." + format.Ext
	outputPath := filepath.Join(s.convertedDir, outputFilename)

	if err := saveUpload(inputPath, file); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	info := s.prober.Probe(ctx, inputPath)

	job := model.Job{
		TaskID:           taskID,
		InputPath:        inputPath,
		OutputPath:       outputPath,
		OutputFilename:   outputFilename,
		OriginalFilename: filepath.Base(originalFilename),
		Format:           formatID,
		MediaInfo:        info,
	}
	s.registry.Create(job)
	created, _ := s.registry.Get(taskID)
	s.dispatcher.Enqueue(taskID)
	return &model.ConvertStartResponse{
		TaskID:    taskID,
		Status:    created.Status,
		MediaInfo: info,
		CreatedAt: created.CreatedAt,
	}, nil
}

// Status returns the polling view of a job.
func (s *ConvertService) Status(taskID string) (*model.ConvertStatusResponse, error) {
	job, ok := s.registry.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &model.ConvertStatusResponse{
		Status: job.Status,
		Error:  errField(job),
	}, nil
}

// Job returns the full view of a job.
func (s *ConvertService) Job(taskID string) (*model.ConvertJobResponse, error) {
	job, ok := s.registry.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &model.ConvertJobResponse{
		TaskID:           job.TaskID,
		Status:           job.Status,
		Error:            errField(job),
		OriginalFilename: job.OriginalFilename,
		Format:           job.Format,
		DownloadFilename: downloadFilename(job),
		MediaInfo:        job.MediaInfo,
		CreatedAt:        job.CreatedAt,
		CompletedAt:      job.CompletedAt,
	}, nil
}

// Download resolves a completed job to the output path on disk and the
// suggested attachment filename.
func (s *ConvertService) Download(taskID string) (path, filename string, err error) {
	job, ok := s.registry.Get(taskID)
	if !ok {
		return "", "", ErrTaskNotFound
	}
	if job.Status != model.JobStatusCompleted {
		return "", "", ErrConversionNotFinished
	}
	if _, statErr := os.Stat(job.OutputPath); statErr != nil {
		return "", "", ErrOutputMissing
	}
	return job.OutputPath, downloadFilename(job), nil
}

// Cleanup removes the job's files and then the record itself. Missing files
// are fine; any other filesystem error aborts the cleanup and leaves the
// record in place.
func (s *ConvertService) Cleanup(taskID string) error {
	job, ok := s.registry.Get(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	if err := removeIfPresent(job.InputPath); err != nil {
		return err
	}
	if err := removeIfPresent(job.OutputPath); err != nil {
		return err
	}
	s.registry.Delete(taskID)
	return nil
}

// Formats lists the supported output formats.
func (s *ConvertService) Formats() []model.FormatInfo {
	ids := media.FormatIDs()
	formats := make([]model.FormatInfo, 0, len(ids))
	for _, id := range ids {
		f, _ := media.LookupFormat(id)
		formats = append(formats, model.FormatInfo{
			ID:         id,
			Ext:        f.Ext,
			VideoCodec: f.VideoCodec,
			AudioCodec: f.AudioCodec,
		})
	}
	return formats
}

func saveUpload(path string, file io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return err
	}
	return out.Close()
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// downloadFilename pairs the original name's stem with the catalog extension
// for the requested format.
func downloadFilename(job model.Job) string {
	stem := strings.TrimSuffix(job.OriginalFilename, filepath.Ext(job.OriginalFilename))
	if stem == "" {
		stem = job.TaskID
	}
	ext := job.Format
	if f, ok := media.LookupFormat(job.Format); ok {
		ext = f.Ext
	}
	return stem + "." + ext
}

func errField(job model.Job) *string {
	if job.Error == "" {
		return nil
	}
	msg := job.Error
	return &msg
}
