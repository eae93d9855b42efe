package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

const (
	// MinSetpoint is the lowest setpoint accepted for any device, in degrees.
	MinSetpoint = 95

	// Day-count bounds for SELECT_DAYS modes.
	MinModeDays     = 1
	MaxModeDays     = 100
	DefaultModeDays = 100

	maxUserAgentLength = 256
)

// Validator provides the domain rules applied before mutating device state.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSetpointFloor rejects setpoints below MinSetpoint. It needs no
// device and runs before any network call.
func (v *Validator) ValidateSetpointFloor(setpoint int) error {
	if setpoint < MinSetpoint {
		return &pkgerrs.InvalidParametersError{Field: "setpoint", Message: "Setpoint is below the minimum"}
	}
	return nil
}

// ValidateSetpointCeiling rejects setpoints above the device-reported maximum.
func (v *Validator) ValidateSetpointCeiling(setpoint int, status types.DeviceStatus) error {
	if status == nil {
		return &pkgerrs.UnknownError{Message: "device reported no status"}
	}
	if setpoint > status.Base().TemperatureSetpointMaximum {
		return &pkgerrs.InvalidParametersError{Field: "setpoint", Message: "Setpoint is above the maximum"}
	}
	return nil
}

// ResolveModeDays checks mode against the device's advertised modes and
// returns the days value to send: nil for plain modes, the supplied or
// default count for SELECT_DAYS modes.
func (v *Validator) ResolveModeDays(status types.DeviceStatus, mode string, days *int) (*int, error) {
	if status == nil {
		return nil, &pkgerrs.UnknownError{Message: "device reported no status"}
	}

	desired, ok := status.Base().FindMode(mode)
	if !ok {
		return nil, &pkgerrs.InvalidParametersError{Field: "mode", Message: "Invalid mode for this device"}
	}

	if !desired.SelectsDays() {
		if days != nil {
			return nil, &pkgerrs.InvalidParametersError{Field: "days", Message: "Days not supported for this operation mode"}
		}
		return nil, nil
	}

	if days == nil {
		return types.Days(DefaultModeDays), nil
	}
	if *days < MinModeDays || *days > MaxModeDays {
		return nil, &pkgerrs.InvalidParametersError{
			Field:   "days",
			Message: fmt.Sprintf("Invalid days selection (must be between %d and %d)", MinModeDays, MaxModeDays),
		}
	}
	return types.Days(*days), nil
}

// ValidateUserAgent rejects User-Agent values that could inject headers or
// that net/http would refuse to send.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.InvalidParametersError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}
	if strings.ContainsFunc(ua, isControl) {
		return &pkgerrs.InvalidParametersError{Field: "UserAgent", Message: "user agent cannot contain control characters"}
	}
	if len(ua) > maxUserAgentLength {
		return &pkgerrs.InvalidParametersError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}
	return nil
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7F
}

// ValidateCredentials rejects empty or whitespace-only credentials.
func (v *Validator) ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &pkgerrs.InvalidParametersError{Field: "Email", Message: "email cannot be empty"}
	}
	if password == "" {
		return &pkgerrs.InvalidParametersError{Field: "Password", Message: "password cannot be empty"}
	}
	return nil
}
