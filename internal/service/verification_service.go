package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aswinko/fuel-gate/internal/domain/vehicle"
	"github.com/aswinko/fuel-gate/internal/imaging"
	"github.com/aswinko/fuel-gate/internal/ocr"
	"github.com/aswinko/fuel-gate/internal/plate"
	"github.com/aswinko/fuel-gate/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUploadFailed = errors.New("image upload failed")
	ErrAuditFailed  = errors.New("verification log write failed")
)

// Registry is the persistence surface the pipeline needs: read-only vehicle
// lookups and append-only verification logs.
type Registry interface {
	FindVehicleByRegistration(ctx context.Context, registration string) (*vehicle.Record, error)
	CreateVehicle(ctx context.Context, record *vehicle.Record) error
	ListVehicles(ctx context.Context) ([]vehicle.Record, error)
	CreateVerificationLog(ctx context.Context, entry *vehicle.LogEntry) error
	ListVerificationLogs(ctx context.Context, limit, offset int) ([]vehicle.LogEntry, error)
	ListVerificationLogsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]vehicle.LogEntry, error)
}

// Recognizer extracts text from an image via an external OCR provider.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*ocr.Result, error)
}

type VerificationService struct {
	repo       Registry
	store      storage.Store
	recognizer Recognizer
	minYear    int
	log        zerolog.Logger
}

func NewVerificationService(repo Registry, store storage.Store, recognizer Recognizer, minYear int, log zerolog.Logger) *VerificationService {
	return &VerificationService{
		repo:       repo,
		store:      store,
		recognizer: recognizer,
		minYear:    minYear,
		log:        log,
	}
}

// Extraction is the outcome of one OCR run over a plate image.
type Extraction struct {
	Text       string     `json:"text"`
	Plate      string     `json:"plate"`
	Confidence float64    `json:"confidence"`
	Words      []ocr.Word `json:"words"`
}

// ExtractPlate binarizes the image, sends it for recognition and normalizes
// the recognized text into a plate number. A failed binarization degrades
// silently to the original bytes; OCR failures are surfaced to the caller,
// who may re-trigger extraction.
func (s *VerificationService) ExtractPlate(ctx context.Context, image []byte) (*Extraction, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	payload := image
	if processed, err := imaging.Binarize(image); err != nil {
		s.log.Debug().Err(err).Msg("preprocessing skipped, forwarding original image")
	} else {
		payload = processed
	}

	result, err := s.recognizer.Recognize(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("text recognition failed")
		return nil, err
	}

	normalized := plate.Normalize(result.Text)
	s.log.Info().
		Str("plate", normalized).
		Float64("confidence", result.Confidence).
		Int("words", len(result.Words)).
		Msg("extracted plate text")

	return &Extraction{
		Text:       result.Text,
		Plate:      normalized,
		Confidence: result.Confidence,
		Words:      result.Words,
	}, nil
}

// VerifyRequest carries one verification attempt: the plate number as
// extracted (or corrected by the operator), the image for archival, and the
// submitting operator's identity.
type VerifyRequest struct {
	RegistrationNumber string
	Image              []byte
	ContentType        string
	UserID             uuid.UUID
}

// Verify runs the lookup-and-decide stage. Steps are strictly ordered:
// archive the image, query the registry, decide, write exactly one audit
// log row, then report. A registry miss is a valid negative decision, not
// an error; upload and log-write failures are fatal.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (*vehicle.VerificationResult, error) {
	key := plate.Compact(req.RegistrationNumber)
	if key == "" {
		return nil, fmt.Errorf("%w: registration number is required", ErrInvalidInput)
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	imageURL, err := s.store.Save(ctx, req.Image, req.ContentType)
	if err != nil {
		s.log.Error().Err(err).Str("plate", key).Msg("failed to archive plate image")
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	record, err := s.repo.FindVehicleByRegistration(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("plate", key).Msg("registry lookup failed")
		return nil, fmt.Errorf("registry lookup: %w", err)
	}

	status, reason := s.decide(record)

	entry := &vehicle.LogEntry{
		RegistrationNumber: key,
		ImageURL:           imageURL,
		UserID:             req.UserID,
		Status:             status,
		Details: map[string]interface{}{
			"submitted": req.RegistrationNumber,
			"reason":    reason,
		},
	}
	if record != nil {
		entry.VehicleID = &record.ID
	}
	if err := s.repo.CreateVerificationLog(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("plate", key).Msg("failed to write verification log")
		return nil, fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}

	s.log.Info().
		Str("plate", key).
		Str("status", string(status)).
		Str("reason", reason).
		Str("user_id", req.UserID.String()).
		Str("log_id", entry.ID.String()).
		Msg("verification decision recorded")

	result := &vehicle.VerificationResult{
		IsValid: status == vehicle.StatusApproved,
		Status:  status,
		LogID:   entry.ID,
	}
	if record != nil {
		result.VehicleDetails = toDetails(record)
	}
	return result, nil
}

// decide approves a plate that exists in the registry and, when a minimum
// year is configured, was manufactured after it.
func (s *VerificationService) decide(record *vehicle.Record) (vehicle.LogStatus, string) {
	if record == nil {
		return vehicle.StatusRejected, "not_in_registry"
	}
	if s.minYear > 0 && record.ManufacturingYear <= s.minYear {
		return vehicle.StatusRejected, fmt.Sprintf("manufactured_in_or_before_%d", s.minYear)
	}
	return vehicle.StatusApproved, "registered"
}

func (s *VerificationService) AddVehicle(ctx context.Context, record *vehicle.Record) error {
	record.RegistrationNumber = plate.Compact(record.RegistrationNumber)
	if record.RegistrationNumber == "" {
		return fmt.Errorf("%w: registration number is required", ErrInvalidInput)
	}
	if record.MakeModel == "" {
		return fmt.Errorf("%w: make_model is required", ErrInvalidInput)
	}
	if record.ManufacturingYear == 0 {
		return fmt.Errorf("%w: manufacturing_year is required", ErrInvalidInput)
	}
	if err := s.repo.CreateVehicle(ctx, record); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	s.log.Info().
		Str("plate", record.RegistrationNumber).
		Int("year", record.ManufacturingYear).
		Msg("vehicle added to registry")
	return nil
}

func (s *VerificationService) ListVehicles(ctx context.Context) ([]vehicle.Record, error) {
	records, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return records, nil
}

func (s *VerificationService) ListLogs(ctx context.Context, limit, offset int) ([]vehicle.LogEntry, error) {
	entries, err := s.repo.ListVerificationLogs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list verification logs: %w", err)
	}
	return entries, nil
}

func (s *VerificationService) ListLogsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]vehicle.LogEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	entries, err := s.repo.ListVerificationLogsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list verification logs: %w", err)
	}
	return entries, nil
}

func toDetails(record *vehicle.Record) *vehicle.Details {
	make, model := splitMakeModel(record.MakeModel)
	return &vehicle.Details{
		RegistrationNumber: record.RegistrationNumber,
		Make:               make,
		Model:              model,
		Year:               record.ManufacturingYear,
		Color:              record.Color,
		FuelType:           record.FuelType,
		Owner:              record.RegisteredOwner,
	}
}

// splitMakeModel separates "Maruti Swift" into make and model on the first
// space; a single word is all make.
func splitMakeModel(makeModel string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(makeModel), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
