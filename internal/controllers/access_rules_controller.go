package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stayflow/access-service/internal/dtos"
	"github.com/stayflow/access-service/internal/middleware"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/services"
	"github.com/stayflow/access-service/internal/utils"
)

type AccessRulesController struct {
	ruleService *services.AccessRuleService
	validate    *validator.Validate
}

func NewAccessRulesController(s *services.AccessRuleService) *AccessRulesController {
	return &AccessRulesController{
		ruleService: s,
		validate:    validator.New(),
	}
}

// formatValidationErrors is a helper to convert validator errors into a user-friendly format.
func (c *AccessRulesController) formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("Field '%s' must be after '%s'", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

func (c *AccessRulesController) getCallerID(r *http.Request) (string, error) {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		return "", &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Missing userID in context"}
	}
	return ctxUserID.(string), nil
}

func (c *AccessRulesController) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	if err := c.validate.Struct(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			utils.RespondWithJSON(w, http.StatusBadRequest, c.formatValidationErrors(validationErrs))
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}

// respondServiceError maps domain sentinels onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrPropertyNotFound),
		errors.Is(err, utils.ErrProviderNotFound),
		errors.Is(err, utils.ErrTenantNotFound),
		errors.Is(err, utils.ErrRuleNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil, err)
	case errors.Is(err, utils.ErrNoSmartLocks):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, "Property has no active smart locks", nil, err)
	case errors.Is(err, utils.ErrInvalidDateRange),
		errors.Is(err, utils.ErrMissingPhone),
		errors.Is(err, models.ErrRuleSubjectMismatch),
		errors.Is(err, models.ErrRuleNoWeekdays),
		errors.Is(err, models.ErrRuleBadWeekday):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
	default:
		utils.HandleAppError(w, err)
	}
}

// POST /api/v1/access/providers/regular
func (c *AccessRulesController) SetupRegularProviderHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SetupRegularProviderHandler")
	logger.Info("Request received")

	callerID, err := c.getCallerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SetupRegularProviderRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}

	rule := &models.AccessRule{
		PropertyID:        req.PropertyID,
		ProviderID:        &req.ProviderID,
		RenewalPeriodDays: req.RenewalPeriodDays,
		TimeRestriction:   req.TimeRestriction,
		CustomTimeStart:   req.CustomTimeStart,
		CustomTimeEnd:     req.CustomTimeEnd,
		AllowedWeekdays:   req.AllowedWeekdays,
		Notes:             req.Notes,
	}

	result, err := c.ruleService.SetupRegularProviderAccess(r.Context(), rule, callerID)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	logger.WithField("ruleID", result.Rule.ID).Info("Regular provider access set up")
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// POST /api/v1/access/providers/occasional
func (c *AccessRulesController) SetupOccasionalProviderHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SetupOccasionalProviderHandler")
	logger.Info("Request received")

	callerID, err := c.getCallerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SetupOccasionalProviderRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}

	rule := &models.AccessRule{
		PropertyID:      req.PropertyID,
		ProviderID:      &req.ProviderID,
		TimeRestriction: req.TimeRestriction,
		CustomTimeStart: req.CustomTimeStart,
		CustomTimeEnd:   req.CustomTimeEnd,
		AllowedWeekdays: req.AllowedWeekdays,
		Notes:           req.Notes,
	}

	result, err := c.ruleService.SetupOccasionalProviderAccess(r.Context(), rule, req.StartDate, req.EndDate, callerID)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	logger.WithField("ruleID", result.Rule.ID).Info("Occasional provider access set up")
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// POST /api/v1/access/tenants/long-term
func (c *AccessRulesController) SetupLongTermTenantHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SetupLongTermTenantHandler")
	logger.Info("Request received")

	callerID, err := c.getCallerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SetupLongTermTenantRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}

	rule := &models.AccessRule{
		PropertyID:         req.PropertyID,
		TenantID:           &req.TenantID,
		TimeRestriction:    req.TimeRestriction,
		CustomTimeStart:    req.CustomTimeStart,
		CustomTimeEnd:      req.CustomTimeEnd,
		AllowedWeekdays:    req.AllowedWeekdays,
		AutoGenerateCode:   req.AutoGenerateCode,
		CodeGenerationRule: req.CodeGenerationRule,
		Notes:              req.Notes,
	}

	result, err := c.ruleService.SetupLongTermTenantAccess(r.Context(), rule, callerID)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	logger.WithField("ruleID", result.Rule.ID).Info("Long-term tenant access set up")
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// POST /api/v1/access/tenants/short-term
func (c *AccessRulesController) SetupShortTermTenantHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "SetupShortTermTenantHandler")
	logger.Info("Request received")

	callerID, err := c.getCallerID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.SetupShortTermTenantRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}

	rule := &models.AccessRule{
		PropertyID: req.PropertyID,
		TenantID:   &req.TenantID,
		Notes:      req.Notes,
	}

	result, err := c.ruleService.SetupShortTermTenantAccess(
		r.Context(), rule, req.LeaseStartDate, req.LeaseEndDate, req.PhoneNumber, callerID,
	)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	logger.WithField("ruleID", result.Rule.ID).Info("Short-term tenant access set up")
	utils.RespondWithJSON(w, http.StatusCreated, result)
}

// POST /api/v1/access/rules/{id}/suspend
func (c *AccessRulesController) SuspendRuleHandler(w http.ResponseWriter, r *http.Request) {
	c.setStatusHandler(w, r, "SuspendRuleHandler", c.ruleService.SuspendRule, "Rule suspended")
}

// POST /api/v1/access/rules/{id}/reactivate
func (c *AccessRulesController) ReactivateRuleHandler(w http.ResponseWriter, r *http.Request) {
	c.setStatusHandler(w, r, "ReactivateRuleHandler", c.ruleService.ReactivateRule, "Rule reactivated")
}

func (c *AccessRulesController) setStatusHandler(
	w http.ResponseWriter,
	r *http.Request,
	handlerName string,
	action func(ctx context.Context, id uuid.UUID) error,
	message string,
) {
	logger := utils.Logger.WithField("handler", handlerName)
	logger.Info("Request received")

	id, err := parseRuleID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := action(r.Context(), id); err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	logger.WithField("ruleID", id).Info(message)
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: message})
}

// GET /api/v1/access/rules?property_id=...
func (c *AccessRulesController) ListRulesHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListRulesHandler")
	logger.Info("Request received")

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid or missing property_id", nil, err)
		return
	}

	rules, err := c.ruleService.ListRulesByProperty(r.Context(), propertyID)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rules)
}

// GET /api/v1/access/rules/{id}/codes
func (c *AccessRulesController) ListRuleCodesHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "ListRuleCodesHandler")
	logger.Info("Request received")

	id, err := parseRuleID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	codes, err := c.ruleService.ListRuleCodes(r.Context(), id)
	if err != nil {
		logger.WithError(err).Error("Service call failed")
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, codes)
}

// POST /api/v1/access/renewals/run
func (c *AccessRulesController) RunRenewalsHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "RunRenewalsHandler")
	logger.Info("Request received")

	result, err := c.ruleService.RenewExpiringAccess(r.Context())
	if err != nil {
		logger.WithError(err).Error("Renewal batch failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.Infof("Renewal batch done: renewed=%d failed=%d", result.Renewed, len(result.Failed))
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func parseRuleID(r *http.Request) (uuid.UUID, error) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid rule ID format", Err: err}
	}
	return id, nil
}
