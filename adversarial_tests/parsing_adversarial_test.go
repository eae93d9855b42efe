package adversarial_tests

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jamesprial/go-aosmith-api-wrapper/adversarial_tests/helpers"
	"github.com/jamesprial/go-aosmith-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

// TestDecodeResponse_MalformedEnvelopes checks that no malformed body
// escapes the error taxonomy or panics the decoder.
func TestDecodeResponse_MalformedEnvelopes(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for i, body := range gen.GenerateMalformedEnvelopes() {
		var out types.StatusResponseData
		err := internal.DecodeResponse([]byte(body), &out)
		if err == nil {
			t.Errorf("case %d (%q): expected an error", i, body)
			continue
		}
		if !pkgerrs.IsUnknown(err) {
			t.Errorf("case %d (%q): expected UnknownError, got %T: %v", i, body, err, err)
		}
	}
}

func TestDecodeResponse_CredentialCodeAnywhere(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for i, body := range gen.GenerateCredentialErrors() {
		err := internal.DecodeResponse([]byte(body), nil)
		if !pkgerrs.IsInvalidCredentials(err) {
			t.Errorf("case %d: expected InvalidCredentialsError, got %T: %v", i, err, err)
		}
	}
}

func TestDecodeResponse_NearMissCodesAreUnknown(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for i, body := range gen.GenerateNearMissCodes() {
		err := internal.DecodeResponse([]byte(body), nil)
		if pkgerrs.IsInvalidCredentials(err) {
			t.Errorf("case %d (%s): near-miss code classified as invalid credentials", i, body)
		}
		if !pkgerrs.IsUnknown(err) {
			t.Errorf("case %d: expected UnknownError, got %T", i, err)
		}
	}
}

func TestDecodeResponse_JSONBomb(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for _, depth := range []int{100, 1000, 20000} {
		var out types.DevicesResponseData
		err := internal.DecodeResponse([]byte(gen.GenerateJSONBomb(depth)), &out)
		if !pkgerrs.IsUnknown(err) {
			t.Errorf("depth %d: expected UnknownError, got %T: %v", depth, err, err)
		}
	}
}

func TestDecodeResponse_LargeErrorList(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	err := internal.DecodeResponse([]byte(gen.GenerateLargeErrorList(5000)), nil)
	var unknown *pkgerrs.UnknownError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownError, got %T", err)
	}
	if !strings.HasPrefix(unknown.Message, "Error: error 0, error 1") {
		t.Errorf("unexpected message prefix: %.60s", unknown.Message)
	}
	if !strings.HasSuffix(unknown.Message, "error 4999") {
		t.Errorf("message lost trailing errors")
	}
	if got := strings.Count(unknown.Message, ", "); got != 4999 {
		t.Errorf("expected 4999 separators, got %d", got)
	}
}

func TestDevice_MalformedDataFails(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for i, raw := range gen.GenerateMalformedDevices() {
		var d types.Device
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			t.Errorf("case %d (%s): expected decode error", i, raw)
		}
	}
}

func TestDevice_OddDataIsNotHeatPump(t *testing.T) {
	gen := helpers.NewJSONGenerator()

	for i, raw := range gen.GenerateOddDevices() {
		var d types.Device
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			t.Errorf("case %d (%s): unexpected error %v", i, raw, err)
			continue
		}
		if d.IsHeatPump() {
			t.Errorf("case %d (%s): treated as heat pump", i, raw)
		}
		if d.JunctionID != "J1" {
			t.Errorf("case %d: junction id = %q", i, d.JunctionID)
		}
	}
}

// A devices payload with one bad entry fails as a whole.
func TestDecodeResponse_DevicesWithOneBadEntry(t *testing.T) {
	body := `{"data": {"devices": [
		{"junctionId": "J1", "data": {"__typename": "NextGenHeatPump", "temperatureSetpointMaximum": 140}},
		{"junctionId": "J2", "data": {"__typename": "NextGenHeatPump", "temperatureSetpointMaximum": "hot"}}
	]}}`

	var out types.DevicesResponseData
	err := internal.DecodeResponse([]byte(body), &out)
	if !pkgerrs.IsUnknown(err) {
		t.Fatalf("expected UnknownError, got %T: %v", err, err)
	}
}

func TestDecodeResponse_UnknownFieldsIgnored(t *testing.T) {
	body := `{"data": {"status": {"isEverythingOkay": true, "surprise": [1, 2, 3]}, "extra": {}}, "extensions": {"trace": "x"}}`

	var out types.StatusResponseData
	if err := internal.DecodeResponse([]byte(body), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Status.IsEverythingOkay {
		t.Error("expected isEverythingOkay true")
	}
}

func TestDecodeResponse_NullResultsKeepPointersNil(t *testing.T) {
	var setpoint types.UpdateSetpointResponseData
	if err := internal.DecodeResponse([]byte(`{"data": {"updateSetpoint": null}}`), &setpoint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setpoint.UpdateSetpoint != nil {
		t.Errorf("expected nil result, got %v", *setpoint.UpdateSetpoint)
	}

	var energy types.EnergyUseResponseData
	if err := internal.DecodeResponse([]byte(`{"data": {"getEnergyUseData": null}}`), &energy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if energy.GetEnergyUseData != nil {
		t.Error("expected nil energy use data")
	}
}
