package validation

import (
	"strings"
	"testing"

	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

func ptr(s string) *string { return &s }

func validHeatPump() *types.Device {
	return &types.Device{
		JunctionID: "J1",
		DSN:        "DSN-J1",
		DeviceType: "NEXT_GEN_HEAT_PUMP",
		Status: &types.HeatPumpStatus{
			StatusBase: types.StatusBase{
				TemperatureSetpoint:        130,
				TemperatureSetpointMaximum: 140,
				Modes: []types.Mode{
					{Mode: "HYBRID"},
					{Mode: "VACATION", Controls: ptr(types.ControlsSelectDays)},
				},
				IsOnline: true,
			},
			HotWaterStatus:            types.HotWaterMedium,
			Mode:                      "HYBRID",
			VacationModeRemainingDays: 0,
		},
	}
}

func TestIsValidHotWaterStatus(t *testing.T) {
	tests := []struct {
		input types.HotWaterStatus
		want  bool
	}{
		{types.HotWaterLow, true},
		{types.HotWaterMedium, true},
		{types.HotWaterHigh, true},
		{"", true},
		{"low", false},
		{"FULL", false},
	}

	for _, tt := range tests {
		if got := IsValidHotWaterStatus(tt.input); got != tt.want {
			t.Errorf("IsValidHotWaterStatus(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsKnownControls(t *testing.T) {
	if !IsKnownControls(nil) {
		t.Error("nil controls should be known")
	}
	if !IsKnownControls(ptr(types.ControlsSelectDays)) {
		t.Error("SELECT_DAYS should be known")
	}
	if IsKnownControls(ptr("SELECT_HOURS")) {
		t.Error("SELECT_HOURS should be unknown")
	}
}

func TestValidateDevice(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *types.Device)
		wantErr string
	}{
		{"valid", func(d *types.Device) {}, ""},
		{"missing junction id", func(d *types.Device) { d.JunctionID = "" }, "JunctionID is required"},
		{"missing dsn", func(d *types.Device) { d.DSN = "" }, "DSN is required"},
		{"no status", func(d *types.Device) { d.Status = nil }, "no status"},
		{"setpoint above maximum", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).TemperatureSetpoint = 150
		}, "exceeds TemperatureSetpointMaximum"},
		{"zero maximum", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).TemperatureSetpointMaximum = 0
		}, "must be positive"},
		{"duplicate mode", func(d *types.Device) {
			s := d.Status.(*types.HeatPumpStatus)
			s.Modes = append(s.Modes, types.Mode{Mode: "HYBRID"})
		}, "advertised twice"},
		{"unnamed mode", func(d *types.Device) {
			s := d.Status.(*types.HeatPumpStatus)
			s.Modes = append(s.Modes, types.Mode{})
		}, "has no name"},
		{"unknown controls", func(d *types.Device) {
			s := d.Status.(*types.HeatPumpStatus)
			s.Modes = append(s.Modes, types.Mode{Mode: "TIMER", Controls: ptr("SELECT_HOURS")})
		}, "unknown controls"},
		{"unknown hot water", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).HotWaterStatus = "FULL"
		}, "HotWaterStatus"},
		{"unadvertised mode", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).Mode = "ELECTRIC"
		}, "not among the advertised modes"},
		{"negative vacation days", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).VacationModeRemainingDays = -1
		}, "VacationModeRemainingDays"},
		{"too many electric days", func(d *types.Device) {
			d.Status.(*types.HeatPumpStatus).ElectricModeRemainingDays = 101
		}, "ElectricModeRemainingDays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validHeatPump()
			tt.mutate(d)
			err := ValidateDevice(d)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateDevice_Generic(t *testing.T) {
	d := &types.Device{
		JunctionID: "J2",
		Status: &types.GenericStatus{
			TypeName: "Device",
			StatusBase: types.StatusBase{
				TemperatureSetpoint:        120,
				TemperatureSetpointMaximum: 140,
			},
		},
	}
	if err := ValidateDevice(d); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	d.Status.Base().TemperatureSetpoint = 141
	if err := ValidateDevice(d); err == nil {
		t.Error("expected error for setpoint above maximum")
	}
}

func TestValidateDevice_Nil(t *testing.T) {
	if err := ValidateDevice(nil); err == nil {
		t.Error("expected error for nil device")
	}
}

func TestValidateDevice_JoinsErrors(t *testing.T) {
	d := validHeatPump()
	d.JunctionID = ""
	d.Status.(*types.HeatPumpStatus).HotWaterStatus = "FULL"

	err := ValidateDevice(d)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined errors, got %q", err.Error())
	}
}

func TestValidateEnergyUseData(t *testing.T) {
	valid := func() *types.EnergyUseData {
		return &types.EnergyUseData{
			Average:     2.4,
			LifetimeKWh: 1412.9,
			StartDate:   "Oct 30",
			GraphData: []types.EnergyUsePoint{
				{Date: "2023-10-30T04:00:00.000Z", KWh: 2.1},
				{Date: "2023-10-31T04:00:00.000Z", KWh: 0},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *types.EnergyUseData)
		wantErr string
	}{
		{"valid", func(e *types.EnergyUseData) {}, ""},
		{"empty series", func(e *types.EnergyUseData) { e.GraphData = nil }, ""},
		{"negative average", func(e *types.EnergyUseData) { e.Average = -1 }, "Average"},
		{"negative lifetime", func(e *types.EnergyUseData) { e.LifetimeKWh = -0.5 }, "LifetimeKWh"},
		{"point without date", func(e *types.EnergyUseData) { e.GraphData[1].Date = "" }, "GraphData[1] has no date"},
		{"negative point", func(e *types.EnergyUseData) { e.GraphData[0].KWh = -2 }, "GraphData[0] has negative usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := ValidateEnergyUseData(e)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateEnergyUseData(nil); err == nil {
		t.Error("expected error for nil data")
	}
}
