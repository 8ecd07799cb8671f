package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aswinko/fuel-gate/internal/domain/vehicle"
)

var ErrDuplicateRegistration = errors.New("registration number already exists")

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type Vehicle struct {
	ID                 uuid.UUID `gorm:"primaryKey;default:uuid_generate_v4()"`
	RegistrationNumber string    `gorm:"not null;uniqueIndex"`
	MakeModel          string    `gorm:"not null"`
	ManufacturingYear  int       `gorm:"not null"`
	Color              *string
	FuelType           *string
	RegisteredOwner    *string
	CreatedAt          time.Time
}

type VerificationLog struct {
	ID                 uuid.UUID `gorm:"primaryKey;default:uuid_generate_v4()"`
	RegistrationNumber string    `gorm:"not null"`
	ImageURL           string    `gorm:"not null"`
	VehicleID          *uuid.UUID
	UserID             uuid.UUID      `gorm:"not null"`
	Status             string         `gorm:"not null"`
	Details            datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time
}

func (r *VehicleRepository) FindVehicleByRegistration(ctx context.Context, registration string) (*vehicle.Record, error) {
	var row Vehicle
	err := r.db.WithContext(ctx).Where("registration_number = ?", registration).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record := toRecord(row)
	return &record, nil
}

func (r *VehicleRepository) CreateVehicle(ctx context.Context, record *vehicle.Record) error {
	row := Vehicle{
		RegistrationNumber: record.RegistrationNumber,
		MakeModel:          record.MakeModel,
		ManufacturingYear:  record.ManufacturingYear,
		CreatedAt:          time.Now(),
	}
	if record.Color != "" {
		row.Color = &record.Color
	}
	if record.FuelType != "" {
		row.FuelType = &record.FuelType
	}
	if record.RegisteredOwner != "" {
		row.RegisteredOwner = &record.RegisteredOwner
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRegistration
		}
		return err
	}
	record.ID = row.ID
	record.CreatedAt = row.CreatedAt
	return nil
}

func (r *VehicleRepository) ListVehicles(ctx context.Context) ([]vehicle.Record, error) {
	var rows []Vehicle
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]vehicle.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

func (r *VehicleRepository) CreateVerificationLog(ctx context.Context, entry *vehicle.LogEntry) error {
	row := VerificationLog{
		ID:                 uuid.New(),
		RegistrationNumber: entry.RegistrationNumber,
		ImageURL:           entry.ImageURL,
		VehicleID:          entry.VehicleID,
		UserID:             entry.UserID,
		Status:             string(entry.Status),
		CreatedAt:          time.Now(),
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal log details: %w", err)
		}
		row.Details = datatypes.JSON(raw)
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	entry.ID = row.ID
	entry.CreatedAt = row.CreatedAt
	return nil
}

func (r *VehicleRepository) ListVerificationLogs(ctx context.Context, limit, offset int) ([]vehicle.LogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []VerificationLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLogEntries(rows)
}

func (r *VehicleRepository) ListVerificationLogsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]vehicle.LogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var rows []VerificationLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLogEntries(rows)
}

func toRecord(row Vehicle) vehicle.Record {
	record := vehicle.Record{
		ID:                 row.ID,
		RegistrationNumber: row.RegistrationNumber,
		MakeModel:          row.MakeModel,
		ManufacturingYear:  row.ManufacturingYear,
		CreatedAt:          row.CreatedAt,
	}
	if row.Color != nil {
		record.Color = *row.Color
	}
	if row.FuelType != nil {
		record.FuelType = *row.FuelType
	}
	if row.RegisteredOwner != nil {
		record.RegisteredOwner = *row.RegisteredOwner
	}
	return record
}

func toLogEntries(rows []VerificationLog) ([]vehicle.LogEntry, error) {
	entries := make([]vehicle.LogEntry, 0, len(rows))
	for _, row := range rows {
		entry := vehicle.LogEntry{
			ID:                 row.ID,
			RegistrationNumber: row.RegistrationNumber,
			ImageURL:           row.ImageURL,
			VehicleID:          row.VehicleID,
			UserID:             row.UserID,
			Status:             vehicle.LogStatus(row.Status),
			CreatedAt:          row.CreatedAt,
		}
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal log details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
