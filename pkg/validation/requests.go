// Package validation validates API request bodies and service configuration
// before any network or data access happens.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// SimulateRequest is the body of a single-simulation call.
type SimulateRequest struct {
	City          string  `json:"city" validate:"required,max=120"`
	Scenario      string  `json:"scenario" validate:"required,max=60"`
	Severity      float64 `json:"severity" validate:"gte=0,lte=1"`
	PairCount     int     `json:"pair_count" validate:"omitempty,gte=1,lte=500"`
	UseHazardData bool    `json:"use_hazard_data"`
}

// SweepRequest is the body of a progressive-sweep call.
type SweepRequest struct {
	City               string    `json:"city" validate:"required,max=120"`
	Scenario           string    `json:"scenario" validate:"required,max=60"`
	Severities         []float64 `json:"severities" validate:"required,min=1,max=50,dive,gte=0,lte=1"`
	PairCount          int       `json:"pair_count" validate:"omitempty,gte=1,lte=500"`
	RepeatsPerSeverity int       `json:"repeats_per_severity" validate:"omitempty,gte=1,lte=25"`
	UseHazardData      bool      `json:"use_hazard_data"`
}

// VisualizeRequest is the body of a visualization call.
type VisualizeRequest struct {
	City          string  `json:"city" validate:"required,max=120"`
	Scenario      string  `json:"scenario" validate:"required,max=60"`
	Severity      float64 `json:"severity" validate:"gte=0,lte=1"`
	Seed          int64   `json:"seed"`
	UseHazardData bool    `json:"use_hazard_data"`
}

// ValidateSimulateRequest validates a single-simulation request body.
func ValidateSimulateRequest(req *SimulateRequest) error {
	if req == nil {
		return errors.New("simulate request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateSweepRequest validates a progressive-sweep request body.
func ValidateSweepRequest(req *SweepRequest) error {
	if req == nil {
		return errors.New("sweep request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateVisualizeRequest validates a visualization request body.
func ValidateVisualizeRequest(req *VisualizeRequest) error {
	if req == nil {
		return errors.New("visualize request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into user-facing messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s needs at least %s element(s)", fe.Field(), fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s exceeds maximum %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
