package test_utils

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/validation"
)

// AssertValidDevice validates a device snapshot using the validation package
func AssertValidDevice(d *types.Device) error {
	return validation.ValidateDevice(d)
}

// AssertHeatPumpList validates that every device is a consistent heat pump
// and that junction ids are unique.
func AssertHeatPumpList(devices []*types.Device) error {
	seen := make(map[string]bool, len(devices))
	for i, d := range devices {
		if d == nil {
			return fmt.Errorf("device %d is nil", i)
		}
		if !d.IsHeatPump() {
			return fmt.Errorf("device %d (%s) is not a heat pump", i, d.JunctionID)
		}
		if err := AssertValidDevice(d); err != nil {
			return fmt.Errorf("device %d: %w", i, err)
		}
		if seen[d.JunctionID] {
			return fmt.Errorf("junction id %s listed twice", d.JunctionID)
		}
		seen[d.JunctionID] = true
	}
	return nil
}

// AssertModeNames validates that a device advertises exactly the given modes
func AssertModeNames(d *types.Device, expected ...string) error {
	if d == nil || d.Status == nil {
		return fmt.Errorf("device has no status")
	}
	var actual []string
	for _, m := range d.Status.Base().Modes {
		actual = append(actual, m.Mode)
	}
	return CompareStringLists(expected, actual)
}

// AssertValidEnergyUse validates an energy-use record and its point count
func AssertValidEnergyUse(e *types.EnergyUseData, points int) error {
	if err := validation.ValidateEnergyUseData(e); err != nil {
		return err
	}
	if len(e.GraphData) != points {
		return fmt.Errorf("expected %d graph points, got %d", points, len(e.GraphData))
	}
	return nil
}

// AssertErrorKind validates that an error belongs to the expected kind
func AssertErrorKind(err error, expected pkgerrs.Kind) error {
	if err == nil {
		return fmt.Errorf("expected %v error, got nil", expected)
	}
	if got := pkgerrs.KindOf(err); got != expected {
		return fmt.Errorf("expected %v error, got %v (%T: %v)", expected, got, err, err)
	}
	return nil
}

// AssertErrorMessage validates that an error message contains expected text
func AssertErrorMessage(err error, expectedMessage string) error {
	if err == nil {
		return fmt.Errorf("expected error containing message '%s', got nil", expectedMessage)
	}

	if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(expectedMessage)) {
		return fmt.Errorf("expected error message containing '%s', got '%s'", expectedMessage, err.Error())
	}

	return nil
}

// AssertVariables validates GraphQL variables as decoded from a request
// body. Numbers arrive as float64; expected ints are converted to match.
func AssertVariables(actual map[string]any, expected map[string]any) error {
	return DeepEqual(normalizeNumbers(expected), actual)
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeNumbers(val)
		}
		return out
	default:
		return v
	}
}

// AssertBearer validates an Authorization header value
func AssertBearer(header, token string) error {
	if want := "Bearer " + token; header != want {
		return fmt.Errorf("expected Authorization %q, got %q", want, header)
	}
	return nil
}
