package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stwalsh4118/landrecords/internal/area"
	apierrors "github.com/stwalsh4118/landrecords/internal/errors"
	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/middleware"
	"github.com/stwalsh4118/landrecords/internal/models"
	"github.com/stwalsh4118/landrecords/internal/services"
)

// LandRecordHandler handles land record uploads and reads.
type LandRecordHandler struct {
	ingestion services.IngestionService
	records   services.LandRecordService
}

// NewLandRecordHandler creates a new LandRecordHandler instance.
func NewLandRecordHandler(ingestion services.IngestionService, records services.LandRecordService) *LandRecordHandler {
	return &LandRecordHandler{
		ingestion: ingestion,
		records:   records,
	}
}

// ConvertRequest represents the query parameters for the area conversion endpoint.
type ConvertRequest struct {
	Value *float64 `form:"value" binding:"required,gte=0"`
	Unit  string   `form:"unit" binding:"required,oneof=sq_m acre guntha"`
}

// ConvertResponse is an area expressed in every supported unit. WholeAcre and
// RemainderGuntha split the area into whole acres plus guntha.
type ConvertResponse struct {
	Unit            area.Unit `json:"unit"`
	Value           float64   `json:"value"`
	SquareMeter     float64   `json:"sqm"`
	Acre            float64   `json:"acre"`
	Guntha          float64   `json:"guntha"`
	RemainderGuntha float64   `json:"remainderGuntha"`
	WholeAcre       int       `json:"wholeAcre"`
}

// LandRecordResponse represents the response for the land record endpoint.
type LandRecordResponse struct {
	LandRecord *services.LandRecordView `json:"landRecord"`
}

// ChainResponse represents the response for the nondh chain endpoint.
type ChainResponse struct {
	Nondhs       []services.ChainEntry `json:"nondhs"`
	LandRecordID uuid.UUID             `json:"landRecordId"`
	Count        int                   `json:"count"`
}

// Upload handles POST /api/v1/land-records/upload.
// The body is returned as an upload report for every pipeline outcome.
func (h *LandRecordHandler) Upload(c *gin.Context) {
	var upload models.Upload
	if err := c.ShouldBindJSON(&upload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apierrors.ErrorResponse{
				Error: apierrors.ErrorDetail{
					Code:      "PAYLOAD_TOO_LARGE",
					Message:   "Upload exceeds the maximum body size",
					RequestID: middleware.GetRequestID(c),
				},
			})
			return
		}
		apierrors.BadRequest(c, "Invalid upload document", map[string]interface{}{
			"reason": err.Error(),
		})
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing land record upload", logger.Fields{
			"district":      upload.BasicInfo.District,
			"taluka":        upload.BasicInfo.Taluka,
			"village":       upload.BasicInfo.Village,
			"nondhs":        len(upload.Nondhs),
			"nondh_details": len(upload.NondhDetails),
		})
	}

	report, err := h.ingestion.Ingest(c.Request.Context(), &upload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUploadInProgress):
			apierrors.Conflict(c, "An upload for this land record is already in progress")
		case report == nil:
			apierrors.InternalServerError(c, "Failed to process upload", err)
		case errors.Is(err, services.ErrStructuralCheck):
			c.JSON(http.StatusBadRequest, report)
		default:
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Upload failed", err, nil)
			}
			c.JSON(http.StatusInternalServerError, report)
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// Get handles GET /api/v1/land-records/:id.
func (h *LandRecordHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.records.GetLandRecord(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrLandRecordNotFound) {
			apierrors.NotFound(c, "Land record not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load land record", err)
		return
	}

	c.JSON(http.StatusOK, LandRecordResponse{LandRecord: view})
}

// Chain handles GET /api/v1/land-records/:id/nondhs.
// Nondhs are returned in sequence order with their resolved validity.
func (h *LandRecordHandler) Chain(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	chain, err := h.records.GetNondhChain(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrLandRecordNotFound) {
			apierrors.NotFound(c, "Land record not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load nondh chain", err)
		return
	}

	c.JSON(http.StatusOK, ChainResponse{
		Nondhs:       chain,
		LandRecordID: id,
		Count:        len(chain),
	})
}

// ConvertArea handles GET /api/v1/area/convert.
func (h *LandRecordHandler) ConvertArea(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, nil, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	unit := area.ParseUnit(req.Unit)
	sqm := area.ToSquareMeters(*req.Value, unit)
	wholeAcre, remainder := area.Split(sqm)

	c.JSON(http.StatusOK, ConvertResponse{
		Unit:            unit,
		Value:           *req.Value,
		SquareMeter:     area.Round2(sqm),
		Acre:            area.Round2(area.FromSquareMeters(sqm, area.UnitAcre)),
		Guntha:          area.Round2(area.FromSquareMeters(sqm, area.UnitGuntha)),
		WholeAcre:       wholeAcre,
		RemainderGuntha: remainder,
	})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Land record id must be a UUID", map[string]interface{}{
			"id": c.Param("id"),
		})
		return uuid.Nil, false
	}
	return id, true
}
