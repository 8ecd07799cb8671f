package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/aswinko/fuel-gate/internal/domain/vehicle"
)

func TestToRecord(t *testing.T) {
	color := "White"
	owner := "Asha Nair"
	row := Vehicle{
		ID:                 uuid.New(),
		RegistrationNumber: "MH01AB1234",
		MakeModel:          "Maruti Swift",
		ManufacturingYear:  2019,
		Color:              &color,
		RegisteredOwner:    &owner,
		CreatedAt:          time.Now(),
	}

	record := toRecord(row)
	assert.Equal(t, row.ID, record.ID)
	assert.Equal(t, "MH01AB1234", record.RegistrationNumber)
	assert.Equal(t, "White", record.Color)
	assert.Equal(t, "Asha Nair", record.RegisteredOwner)
	assert.Empty(t, record.FuelType)
}

func TestToLogEntries(t *testing.T) {
	vehicleID := uuid.New()
	rows := []VerificationLog{
		{
			ID:                 uuid.New(),
			RegistrationNumber: "MH01AB1234",
			ImageURL:           "/images/1.jpg",
			VehicleID:          &vehicleID,
			UserID:             uuid.New(),
			Status:             "approved",
			Details:            datatypes.JSON(`{"reason":"registered"}`),
		},
		{
			ID:                 uuid.New(),
			RegistrationNumber: "XX99ZZ9999",
			ImageURL:           "/images/2.jpg",
			UserID:             uuid.New(),
			Status:             "rejected",
		},
	}

	entries, err := toLogEntries(rows)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, vehicle.StatusApproved, entries[0].Status)
	assert.Equal(t, "registered", entries[0].Details["reason"])
	require.NotNil(t, entries[0].VehicleID)

	assert.Equal(t, vehicle.StatusRejected, entries[1].Status)
	assert.Nil(t, entries[1].VehicleID)
	assert.Nil(t, entries[1].Details)
}

func TestToLogEntriesMalformedDetails(t *testing.T) {
	rows := []VerificationLog{{Details: datatypes.JSON(`{broken`)}}
	_, err := toLogEntries(rows)
	assert.Error(t, err)
}
