package draft

import (
	"errors"
	"strings"

	"carcool-backend/utils"

	"github.com/go-playground/validator/v10"
)

// ValidationError names the first offending field and the message shown for it.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type vehicleRules struct {
	CarNumber    string `validate:"required"`
	CustomerName string `validate:"required"`
	Mobile       string `validate:"mobile10"`
	CarModel     string `validate:"required"`
}

var vehicleMessages = map[string]ValidationError{
	"CarNumber":    {Field: "carNumber", Message: "Car number is required"},
	"CustomerName": {Field: "customerName", Message: "Customer name is required"},
	"Mobile":       {Field: "mobile", Message: "Enter valid 10-digit mobile number"},
	"CarModel":     {Field: "carModel", Message: "Car model is required"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mobile10", func(fl validator.FieldLevel) bool {
		return utils.ValidateMobile(fl.Field().String())
	})
	return v
}

// validateVehicle gates step 1 in every mode. Fields are checked in form order and the
// first failure wins.
func (d Draft) validateVehicle() error {
	rules := vehicleRules{
		CarNumber:    strings.TrimSpace(d.Vehicle.CarNumber),
		CustomerName: strings.TrimSpace(d.Vehicle.CustomerName),
		Mobile:       strings.TrimSpace(d.Vehicle.Mobile),
		CarModel:     strings.TrimSpace(d.Vehicle.CarModel),
	}
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := vehicleMessages[fieldErrs[0].StructField()]; ok {
			return &msg
		}
	}
	return &ValidationError{Field: "vehicle", Message: err.Error()}
}

// validateProblems is the only gate relaxed mode lifts.
func (d Draft) validateProblems() error {
	if d.Mode != ModeStrict {
		return nil
	}
	if d.OtherSelected && strings.TrimSpace(d.OtherProblem) == "" {
		return &ValidationError{Field: "otherProblem", Message: "Describe the other problem"}
	}
	return nil
}
