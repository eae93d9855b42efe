package test_generators

import (
	"fmt"
	"math/rand"
	"time"
)

// heatPumpTypename mirrors types.HeatPumpTypename; generators emit raw JSON
// shapes and do not depend on the decoder.
const heatPumpTypename = "NextGenHeatPump"

// FleetGenerator generates realistic device listings for testing.
// Output is shaped like the devices query response, ready for a mock server.
type FleetGenerator struct {
	rand         *rand.Rand
	models       []string
	locations    []string
	names        []string
	otherTypes   []string
	plainModes   []string
	dayModes     []string
	hotWater     []string
	nextJunction int
}

// FleetOptions shapes a generated fleet
type FleetOptions struct {
	HeatPumps int
	Others    int
	// Offline marks every generated device as offline
	Offline bool
}

// NewFleetGenerator creates a new fleet generator. A zero seed is random.
func NewFleetGenerator(seed int64) *FleetGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &FleetGenerator{
		rand: rand.New(rand.NewSource(seed)),
		models: []string{
			"HPTS-50 200 202172000", "HPTS-66 200 202172000", "HPTS-80 200 202172000",
			"HPSH-50", "HPSH-66",
		},
		locations: []string{"Basement", "Garage", "Utility Room", "Attic", "Closet", ""},
		names:     []string{"Water Heater", "Main", "Upstairs", "Guest House", "Shop"},
		otherTypes: []string{
			"Device", "RE3Connected", "NextGenElectric", "GasTankless",
		},
		plainModes: []string{"HYBRID", "HEAT_PUMP"},
		dayModes:   []string{"ELECTRIC", "VACATION"},
		hotWater:   []string{"LOW", "MEDIUM", "HIGH"},
	}
}

// GenerateHeatPump creates one consistent NextGenHeatPump device
func (fg *FleetGenerator) GenerateHeatPump() map[string]any {
	junctionID := fg.generateJunctionID()
	maximum := 120 + 5*fg.rand.Intn(5) // 120..140
	setpoint := 95 + fg.rand.Intn(maximum-95+1)
	modes := fg.generateModes()
	current := modes[fg.rand.Intn(len(modes))]["mode"].(string)

	vacationDays, electricDays := 0, 0
	switch current {
	case "VACATION":
		vacationDays = 1 + fg.rand.Intn(100)
	case "ELECTRIC":
		electricDays = 1 + fg.rand.Intn(100)
	}

	return map[string]any{
		"brand":      "aosmith",
		"model":      fg.randElement(fg.models),
		"deviceType": "NEXT_GEN_HEAT_PUMP",
		"dsn":        "DSN-" + junctionID,
		"junctionId": junctionID,
		"name":       fg.randElement(fg.names),
		"serial":     fmt.Sprintf("SN%010d", fg.rand.Int63n(1e10)),
		"install":    map[string]any{"location": fg.randElement(fg.locations)},
		"data": map[string]any{
			"__typename":                  heatPumpTypename,
			"temperatureSetpoint":         setpoint,
			"temperatureSetpointPending":  fg.rand.Intn(10) == 0,
			"temperatureSetpointPrevious": setpoint,
			"temperatureSetpointMaximum":  maximum,
			"modes":                       modes,
			"isOnline":                    true,
			"firmwareVersion":             fmt.Sprintf("2.%d", fg.rand.Intn(20)),
			"hotWaterStatus":              fg.randElement(fg.hotWater),
			"mode":                        current,
			"modePending":                 false,
			"vacationModeRemainingDays":   vacationDays,
			"electricModeRemainingDays":   electricDays,
		},
	}
}

// GenerateOther creates a device of a non-heat-pump typename
func (fg *FleetGenerator) GenerateOther() map[string]any {
	junctionID := fg.generateJunctionID()
	return map[string]any{
		"brand":      "aosmith",
		"model":      "EE12-50H55DVF",
		"deviceType": "RE3_CONNECTED",
		"dsn":        "DSN-" + junctionID,
		"junctionId": junctionID,
		"name":       fg.randElement(fg.names),
		"serial":     fmt.Sprintf("SN%010d", fg.rand.Int63n(1e10)),
		"install":    map[string]any{"location": fg.randElement(fg.locations)},
		"data": map[string]any{
			"__typename":                 fg.randElement(fg.otherTypes),
			"temperatureSetpoint":        120,
			"temperatureSetpointMaximum": 140,
			"modes":                      []map[string]any{{"mode": "STANDARD", "controls": nil}},
			"isOnline":                   true,
		},
	}
}

// GenerateFleet creates a shuffled mix of heat pumps and other devices
func (fg *FleetGenerator) GenerateFleet(opts FleetOptions) []map[string]any {
	fleet := make([]map[string]any, 0, opts.HeatPumps+opts.Others)
	for i := 0; i < opts.HeatPumps; i++ {
		fleet = append(fleet, fg.GenerateHeatPump())
	}
	for i := 0; i < opts.Others; i++ {
		fleet = append(fleet, fg.GenerateOther())
	}
	fg.rand.Shuffle(len(fleet), func(i, j int) { fleet[i], fleet[j] = fleet[j], fleet[i] })

	if opts.Offline {
		for _, d := range fleet {
			d["data"].(map[string]any)["isOnline"] = false
		}
	}
	return fleet
}

// GenerateEnergyUse creates an energy-use record with the given number of daily points
func (fg *FleetGenerator) GenerateEnergyUse(days int) map[string]any {
	start := time.Date(2023, 10, 30, 4, 0, 0, 0, time.UTC)
	points := make([]map[string]any, 0, days)
	total := 0.0
	for i := 0; i < days; i++ {
		kwh := float64(fg.rand.Intn(400)) / 100
		total += kwh
		points = append(points, map[string]any{
			"date": start.AddDate(0, 0, i).Format("2006-01-02T15:04:05.000Z"),
			"kwh":  kwh,
		})
	}

	average := 0.0
	if days > 0 {
		average = total / float64(days)
	}
	return map[string]any{
		"average":     average,
		"graphData":   points,
		"lifetimeKwh": total + float64(fg.rand.Intn(5000)),
		"startDate":   start.Format("Jan 2"),
	}
}

// generateModes always includes at least one plain mode
func (fg *FleetGenerator) generateModes() []map[string]any {
	modes := []map[string]any{{"mode": fg.plainModes[0], "controls": nil}}
	for _, m := range fg.plainModes[1:] {
		if fg.rand.Intn(2) == 0 {
			modes = append(modes, map[string]any{"mode": m, "controls": nil})
		}
	}
	for _, m := range fg.dayModes {
		if fg.rand.Intn(2) == 0 {
			modes = append(modes, map[string]any{"mode": m, "controls": "SELECT_DAYS"})
		}
	}
	return modes
}

func (fg *FleetGenerator) generateJunctionID() string {
	fg.nextJunction++
	return fmt.Sprintf("junction-%04d-%x", fg.nextJunction, fg.rand.Uint32())
}

func (fg *FleetGenerator) randElement(slice []string) string {
	return slice[fg.rand.Intn(len(slice))]
}
