// Package validation checks decoded device and energy-use snapshots for
// internal consistency.
//
// The API is the source of truth, so the client never rejects a snapshot
// that fails these checks; it logs them. Callers that persist or display
// snapshots can use the same checks.
package validation

import (
	"fmt"
	"strings"

	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

// maxRemainingDays is the largest day count a SELECT_DAYS mode accepts.
const maxRemainingDays = 100

// IsValidHotWaterStatus reports whether s is a known hot-water level.
// Devices that do not report one send an empty string.
func IsValidHotWaterStatus(s types.HotWaterStatus) bool {
	switch s {
	case "", types.HotWaterLow, types.HotWaterMedium, types.HotWaterHigh:
		return true
	}
	return false
}

// IsKnownControls reports whether a mode's controls value is understood.
func IsKnownControls(controls *string) bool {
	return controls == nil || *controls == types.ControlsSelectDays
}

// ValidateStatusBase validates the fields every device variant reports
func ValidateStatusBase(s *types.StatusBase) error {
	if s == nil {
		return fmt.Errorf("status is nil")
	}

	var errs []error

	if s.TemperatureSetpointMaximum <= 0 {
		errs = append(errs, fmt.Errorf("TemperatureSetpointMaximum must be positive, got %d", s.TemperatureSetpointMaximum))
	} else if s.TemperatureSetpoint > s.TemperatureSetpointMaximum {
		errs = append(errs, fmt.Errorf("TemperatureSetpoint (%d) exceeds TemperatureSetpointMaximum (%d)",
			s.TemperatureSetpoint, s.TemperatureSetpointMaximum))
	}

	seen := make(map[string]bool, len(s.Modes))
	for i, m := range s.Modes {
		if m.Mode == "" {
			errs = append(errs, fmt.Errorf("mode %d has no name", i))
			continue
		}
		if seen[m.Mode] {
			errs = append(errs, fmt.Errorf("mode %s is advertised twice", m.Mode))
		}
		seen[m.Mode] = true
		if !IsKnownControls(m.Controls) {
			errs = append(errs, fmt.Errorf("mode %s has unknown controls %q", m.Mode, *m.Controls))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("status validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateHeatPumpStatus validates a NextGenHeatPump status block
func ValidateHeatPumpStatus(s *types.HeatPumpStatus) error {
	if s == nil {
		return fmt.Errorf("heat pump status is nil")
	}

	var errs []error

	if err := ValidateStatusBase(&s.StatusBase); err != nil {
		errs = append(errs, err)
	}

	if !IsValidHotWaterStatus(s.HotWaterStatus) {
		errs = append(errs, fmt.Errorf("HotWaterStatus has unknown value: %s", s.HotWaterStatus))
	}

	// The current mode must be one the device advertises
	if s.Mode != "" {
		if _, ok := s.FindMode(s.Mode); !ok {
			errs = append(errs, fmt.Errorf("Mode %s is not among the advertised modes", s.Mode))
		}
	}

	for name, days := range map[string]int{
		"VacationModeRemainingDays": s.VacationModeRemainingDays,
		"ElectricModeRemainingDays": s.ElectricModeRemainingDays,
	} {
		if days < 0 || days > maxRemainingDays {
			errs = append(errs, fmt.Errorf("%s out of range [0, %d]: %d", name, maxRemainingDays, days))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("heat pump validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateDevice validates a device snapshot and its status block.
func ValidateDevice(d *types.Device) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	var errs []error

	if d.JunctionID == "" {
		errs = append(errs, fmt.Errorf("JunctionID is required"))
	}

	switch status := d.Status.(type) {
	case nil:
		errs = append(errs, fmt.Errorf("device reported no status"))
	case *types.HeatPumpStatus:
		if d.DSN == "" {
			errs = append(errs, fmt.Errorf("DSN is required for heat pumps"))
		}
		if err := ValidateHeatPumpStatus(status); err != nil {
			errs = append(errs, err)
		}
	default:
		if err := ValidateStatusBase(status.Base()); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("device validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateEnergyUseData validates an energy-use record
func ValidateEnergyUseData(e *types.EnergyUseData) error {
	if e == nil {
		return fmt.Errorf("energy use data is nil")
	}

	var errs []error

	if e.Average < 0 {
		errs = append(errs, fmt.Errorf("Average must be non-negative, got %f", e.Average))
	}
	if e.LifetimeKWh < 0 {
		errs = append(errs, fmt.Errorf("LifetimeKWh must be non-negative, got %f", e.LifetimeKWh))
	}

	for i, p := range e.GraphData {
		if p.Date == "" {
			errs = append(errs, fmt.Errorf("GraphData[%d] has no date", i))
		}
		if p.KWh < 0 {
			errs = append(errs, fmt.Errorf("GraphData[%d] has negative usage: %f", i, p.KWh))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("energy use validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// joinValidationErrors combines multiple validation errors into a single error
func joinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
