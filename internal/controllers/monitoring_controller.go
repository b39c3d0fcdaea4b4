package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/dtos"
	"github.com/stayflow/access-service/internal/services"
	"github.com/stayflow/access-service/internal/utils"
)

type MonitoringController struct {
	monitorService *services.AccessMonitorService
	validate       *validator.Validate
}

func NewMonitoringController(s *services.AccessMonitorService) *MonitoringController {
	return &MonitoringController{
		monitorService: s,
		validate:       validator.New(),
	}
}

// POST /api/v1/access/monitor
// Lock-vendor webhook: one access event per call. Violations come back
// as the response body; clean events get a 204.
func (c *MonitoringController) MonitorAccessHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "MonitorAccessHandler")
	logger.Info("Request received")

	var req dtos.MonitorAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			var details []dtos.ValidationErrorDetail
			for _, vErr := range validationErrs {
				details = append(details, dtos.ValidationErrorDetail{
					Field:   vErr.Field(),
					Message: fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", vErr.Field(), vErr.Tag()),
					Code:    "validation_" + vErr.Tag(),
				})
			}
			utils.RespondWithJSON(w, http.StatusBadRequest, details)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return
	}

	summary, err := c.monitorService.Monitor(r.Context(), req)
	if err != nil {
		logger.WithError(err).Error("Monitoring failed")
		utils.HandleAppError(w, err)
		return
	}

	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	logger.WithField("monitoringID", summary.MonitoringID).Warn("Violation recorded")
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// GET /api/v1/access/violations?property_id=...&all=true&limit=50
func (c *MonitoringController) ListViolationsHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListViolationsHandler")
	logger.Info("Request received")

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid or missing property_id", nil, err)
		return
	}

	// all=true includes clean records; default is violations only.
	violationsOnly := r.URL.Query().Get("all") != "true"

	limit := constants.ViolationListDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, pErr := strconv.Atoi(raw)
		if pErr != nil || parsed < 1 {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid limit", nil, pErr)
			return
		}
		limit = parsed
	}

	resp, err := c.monitorService.ListViolations(r.Context(), propertyID, violationsOnly, limit)
	if err != nil {
		logger.WithError(err).Error("Listing violations failed")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
