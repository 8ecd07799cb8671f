package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aswinko/fuel-gate/internal/domain/vehicle"
	"github.com/aswinko/fuel-gate/internal/ocr"
	"github.com/aswinko/fuel-gate/internal/repository"
	"github.com/aswinko/fuel-gate/internal/service"
)

// maxImageBytes caps uploaded plate photos at 5 MiB.
const maxImageBytes = 5 << 20

type Handler struct {
	verification *service.VerificationService
	log          zerolog.Logger
}

func NewHandler(verification *service.VerificationService, log zerolog.Logger) *Handler {
	return &Handler{
		verification: verification,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(authMiddleware)
	{
		api.POST("/ocr", h.extractPlate)
		api.POST("/verify-vehicle", h.verifyVehicle)
		api.POST("/vehicles", h.addVehicle)
		api.GET("/vehicles", h.listVehicles)
		api.GET("/verification-logs", h.listLogs)
		api.GET("/verification-logs/me", h.listMyLogs)
	}
}

// readImage pulls a multipart image field and enforces the intake
// constraints before anything downstream runs. It writes the 400 response
// itself and reports ok=false on violation.
func (h *Handler) readImage(c *gin.Context, field string) (data []byte, contentType string, ok bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("No image provided"))
		return nil, "", false
	}
	if file.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, errorResponse("File size exceeds 5MB limit"))
		return nil, "", false
	}
	contentType = file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, errorResponse("File is not an image"))
		return nil, "", false
	}

	data, err = readAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read uploaded image")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return nil, "", false
	}
	return data, contentType, true
}

func (h *Handler) extractPlate(c *gin.Context) {
	image, _, ok := h.readImage(c, "image")
	if !ok {
		return
	}

	extraction, err := h.verification.ExtractPlate(c.Request.Context(), image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, ocr.ErrNoText):
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to extract text from image"))
		default:
			h.log.Error().Err(err).Msg("plate extraction failed")
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to process image"))
		}
		return
	}

	c.JSON(http.StatusOK, extraction)
}

func (h *Handler) verifyVehicle(c *gin.Context) {
	registration := strings.TrimSpace(c.PostForm("registrationNumber"))
	if registration == "" {
		c.JSON(http.StatusBadRequest, errorResponse("No registration number provided"))
		return
	}

	image, contentType, ok := h.readImage(c, "image")
	if !ok {
		return
	}

	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("operator identity missing"))
		return
	}

	result, err := h.verification.Verify(c.Request.Context(), service.VerifyRequest{
		RegistrationNumber: registration,
		Image:              image,
		ContentType:        contentType,
		UserID:             userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		default:
			h.log.Error().Err(err).Str("plate", registration).Msg("vehicle verification failed")
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to verify vehicle"))
		}
		return
	}

	// A registry miss is logged as rejected before this response is built.
	if result.VehicleDetails == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"isValid": false,
			"error":   "Vehicle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isValid":        result.IsValid,
		"vehicleDetails": result.VehicleDetails,
	})
}

func (h *Handler) addVehicle(c *gin.Context) {
	var req struct {
		RegistrationNumber string `json:"registration_number" binding:"required"`
		MakeModel          string `json:"make_model" binding:"required"`
		ManufacturingYear  int    `json:"manufacturing_year" binding:"required"`
		Color              string `json:"color"`
		FuelType           string `json:"fuel_type"`
		RegisteredOwner    string `json:"registered_owner"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record := &vehicle.Record{
		RegistrationNumber: req.RegistrationNumber,
		MakeModel:          req.MakeModel,
		ManufacturingYear:  req.ManufacturingYear,
		Color:              req.Color,
		FuelType:           req.FuelType,
		RegisteredOwner:    req.RegisteredOwner,
	}
	if err := h.verification.AddVehicle(c.Request.Context(), record); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, repository.ErrDuplicateRegistration):
			c.JSON(http.StatusConflict, errorResponse("registration number already exists"))
		default:
			h.log.Error().Err(err).Msg("failed to add vehicle")
			c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		}
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listVehicles(c *gin.Context) {
	records, err := h.verification.ListVehicles(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list vehicles")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) listLogs(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	entries, err := h.verification.ListLogs(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list verification logs")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) listMyLogs(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("operator identity missing"))
		return
	}
	limit := intQuery(c, "limit", 10)

	entries, err := h.verification.ListLogsForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list operator verification logs")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(entries))
}

func readAll(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes+1))
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
