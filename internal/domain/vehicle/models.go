package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// LogStatus is the decision recorded for a verification attempt.
type LogStatus string

const (
	StatusApproved LogStatus = "approved"
	StatusRejected LogStatus = "rejected"
)

// Record is a registry entry keyed by registration number. The pipeline
// only ever reads these.
type Record struct {
	ID                 uuid.UUID `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	MakeModel          string    `json:"make_model"`
	ManufacturingYear  int       `json:"manufacturing_year"`
	Color              string    `json:"color,omitempty"`
	FuelType           string    `json:"fuel_type,omitempty"`
	RegisteredOwner    string    `json:"registered_owner,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// LogEntry is one row of the append-only verification audit trail.
// VehicleID is nil when the registry had no match.
type LogEntry struct {
	ID                 uuid.UUID              `json:"id"`
	RegistrationNumber string                 `json:"registration_number"`
	ImageURL           string                 `json:"image_url"`
	VehicleID          *uuid.UUID             `json:"vehicle_id,omitempty"`
	UserID             uuid.UUID              `json:"user_id"`
	Status             LogStatus              `json:"status"`
	Details            map[string]interface{} `json:"details,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// Details is the operator-facing view of a matched registry record.
// Make and Model come from splitting MakeModel on the first space.
type Details struct {
	RegistrationNumber string `json:"registrationNumber"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	Color              string `json:"color"`
	FuelType           string `json:"fuelType"`
	Owner              string `json:"owner"`
}

// VerificationResult is the outcome of one lookup-and-decide run.
type VerificationResult struct {
	IsValid        bool      `json:"isValid"`
	Status         LogStatus `json:"status"`
	VehicleDetails *Details  `json:"vehicleDetails,omitempty"`
	LogID          uuid.UUID `json:"log_id"`
}
