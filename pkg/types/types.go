package types

import (
	"encoding/json"
	"fmt"
)

// HeatPumpTypename is the __typename of the only device variant the client exposes.
const HeatPumpTypename = "NextGenHeatPump"

// ControlsSelectDays marks a mode that takes a day-count parameter.
const ControlsSelectDays = "SELECT_DAYS"

// HotWaterStatus is the coarse hot-water level reported by a heat pump.
type HotWaterStatus string

const (
	HotWaterLow    HotWaterStatus = "LOW"
	HotWaterMedium HotWaterStatus = "MEDIUM"
	HotWaterHigh   HotWaterStatus = "HIGH"
)

// Mode describes one operating mode a device advertises.
type Mode struct {
	Mode string `json:"mode"`
	// Controls is nil for plain modes and "SELECT_DAYS" for modes that
	// accept a day count.
	Controls *string `json:"controls"`
}

// SelectsDays reports whether the mode accepts a day-count parameter.
func (m Mode) SelectsDays() bool {
	return m.Controls != nil && *m.Controls == ControlsSelectDays
}

// Install holds installation metadata for a device.
type Install struct {
	Location string `json:"location"`
}

// DeviceStatus is the status block of a device, discriminated by __typename.
// It is implemented by *GenericStatus and *HeatPumpStatus.
type DeviceStatus interface {
	Typename() string
	Base() *StatusBase
}

// StatusBase holds the fields every device variant reports.
type StatusBase struct {
	TemperatureSetpoint         int    `json:"temperatureSetpoint"`
	TemperatureSetpointPending  bool   `json:"temperatureSetpointPending"`
	TemperatureSetpointPrevious int    `json:"temperatureSetpointPrevious"`
	TemperatureSetpointMaximum  int    `json:"temperatureSetpointMaximum"`
	Modes                       []Mode `json:"modes"`
	IsOnline                    bool   `json:"isOnline"`
}

// Base returns the shared status fields.
func (s *StatusBase) Base() *StatusBase {
	return s
}

// FindMode returns the advertised mode with the given name.
func (s *StatusBase) FindMode(name string) (Mode, bool) {
	for _, m := range s.Modes {
		if m.Mode == name {
			return m, true
		}
	}
	return Mode{}, false
}

// GenericStatus is the status of any device that is not a NextGenHeatPump.
type GenericStatus struct {
	StatusBase
	TypeName string `json:"__typename"`
}

// Typename returns the raw __typename reported by the API.
func (s *GenericStatus) Typename() string {
	return s.TypeName
}

// HeatPumpStatus is the status of a NextGenHeatPump device.
type HeatPumpStatus struct {
	StatusBase
	FirmwareVersion           string         `json:"firmwareVersion"`
	HotWaterStatus            HotWaterStatus `json:"hotWaterStatus"`
	Mode                      string         `json:"mode"`
	ModePending               bool           `json:"modePending"`
	VacationModeRemainingDays int            `json:"vacationModeRemainingDays"`
	ElectricModeRemainingDays int            `json:"electricModeRemainingDays"`
}

// Typename always returns HeatPumpTypename.
func (s *HeatPumpStatus) Typename() string {
	return HeatPumpTypename
}

// Device is a snapshot of one water heater as returned by a device listing.
// JunctionID is the only identity; nothing is cached between listings.
type Device struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	DeviceType string  `json:"deviceType"`
	DSN        string  `json:"dsn"`
	JunctionID string  `json:"junctionId"`
	Name       string  `json:"name"`
	Serial     string  `json:"serial"`
	Install    Install `json:"install"`

	// Status is decoded from the "data" block.
	Status DeviceStatus `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler, selecting the Status variant from __typename.
func (d *Device) UnmarshalJSON(data []byte) error {
	type plain Device
	var raw struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Device(raw.plain)

	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	var tag struct {
		Typename string `json:"__typename"`
	}
	if err := json.Unmarshal(raw.Data, &tag); err != nil {
		return fmt.Errorf("failed to parse device data: %w", err)
	}

	if tag.Typename == HeatPumpTypename {
		var status HeatPumpStatus
		if err := json.Unmarshal(raw.Data, &status); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", HeatPumpTypename, err)
		}
		d.Status = &status
		return nil
	}

	var status GenericStatus
	if err := json.Unmarshal(raw.Data, &status); err != nil {
		return fmt.Errorf("failed to parse device data: %w", err)
	}
	d.Status = &status
	return nil
}

// IsHeatPump reports whether the device is a NextGenHeatPump.
func (d *Device) IsHeatPump() bool {
	_, ok := d.Status.(*HeatPumpStatus)
	return ok
}

// HeatPump returns the heat-pump status when the device is a NextGenHeatPump.
func (d *Device) HeatPump() (*HeatPumpStatus, bool) {
	s, ok := d.Status.(*HeatPumpStatus)
	return s, ok
}

// EnergyUsePoint is one sample of the energy-use time series.
type EnergyUsePoint struct {
	Date string  `json:"date"`
	KWh  float64 `json:"kwh"`
}

// EnergyUseData is the energy-use record of a device.
type EnergyUseData struct {
	Average     float64          `json:"average"`
	GraphData   []EnergyUsePoint `json:"graphData"`
	LifetimeKWh float64          `json:"lifetimeKwh"`
	StartDate   string           `json:"startDate"`
}

// ModeRequest describes an operating-mode change.
type ModeRequest struct {
	JunctionID string
	Mode       string
	// Days is only valid for modes whose descriptor selects days.
	// Leave nil for those modes and the client sends 100.
	Days *int
}

// Days returns a pointer to n, for use in ModeRequest.
func Days(n int) *int {
	return &n
}

// GraphQLError is one entry of a failed GraphQL response.
type GraphQLError struct {
	Message   string `json:"message"`
	Locations []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
	Path       []any `json:"path"`
	Extensions struct {
		Code      string `json:"code"`
		Exception struct {
			Message string `json:"message"`
		} `json:"exception"`
	} `json:"extensions"`
}

// LoginTokens are the tokens returned by the login operation.
type LoginTokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponseData is the payload of the login operation.
type LoginResponseData struct {
	Login struct {
		User struct {
			Tokens LoginTokens `json:"tokens"`
		} `json:"user"`
	} `json:"login"`
}

// StatusResponseData is the payload of the status query.
type StatusResponseData struct {
	Status struct {
		IsEverythingOkay bool `json:"isEverythingOkay"`
	} `json:"status"`
}

// DevicesResponseData is the payload of the devices query.
type DevicesResponseData struct {
	Devices []*Device `json:"devices"`
}

// EnergyUseResponseData is the payload of the getEnergyUseData query.
type EnergyUseResponseData struct {
	GetEnergyUseData *EnergyUseData `json:"getEnergyUseData"`
}

// UpdateSetpointResponseData is the payload of the updateSetpoint mutation.
// A pointer distinguishes an absent result from false.
type UpdateSetpointResponseData struct {
	UpdateSetpoint *bool `json:"updateSetpoint"`
}

// UpdateModeResponseData is the payload of the updateMode mutation.
type UpdateModeResponseData struct {
	UpdateMode *bool `json:"updateMode"`
}
