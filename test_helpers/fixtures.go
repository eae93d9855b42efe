package test_helpers

// HeatPumpFixture returns a NextGenHeatPump device as the devices query
// reports it. It advertises HYBRID, HEAT_PUMP, ELECTRIC and a SELECT_DAYS
// VACATION mode, with a setpoint maximum of 140.
func HeatPumpFixture(junctionID string) map[string]any {
	return map[string]any{
		"brand":      "aosmith",
		"model":      "HPTS-50 200 202172000",
		"deviceType": "NEXT_GEN_HEAT_PUMP",
		"dsn":        "DSN-" + junctionID,
		"junctionId": junctionID,
		"name":       "Water Heater",
		"serial":     "SN-" + junctionID,
		"install": map[string]any{
			"location": "Basement",
		},
		"data": map[string]any{
			"__typename":                  "NextGenHeatPump",
			"temperatureSetpoint":         130,
			"temperatureSetpointPending":  false,
			"temperatureSetpointPrevious": 130,
			"temperatureSetpointMaximum":  140,
			"modes": []map[string]any{
				{"mode": "HYBRID", "controls": nil},
				{"mode": "HEAT_PUMP", "controls": nil},
				{"mode": "ELECTRIC", "controls": "SELECT_DAYS"},
				{"mode": "VACATION", "controls": "SELECT_DAYS"},
			},
			"isOnline":                  true,
			"firmwareVersion":           "2.14",
			"hotWaterStatus":            "LOW",
			"mode":                      "HEAT_PUMP",
			"modePending":               false,
			"vacationModeRemainingDays": 0,
			"electricModeRemainingDays": 0,
		},
	}
}

// GenericFixture returns a device of some other typename. The client is
// expected to filter it out of device listings.
func GenericFixture(junctionID, typename string) map[string]any {
	return map[string]any{
		"brand":      "aosmith",
		"model":      "EE12-50H55DVF",
		"deviceType": "RE3_CONNECTED",
		"dsn":        "DSN-" + junctionID,
		"junctionId": junctionID,
		"name":       "Tank",
		"serial":     "SN-" + junctionID,
		"install": map[string]any{
			"location": "Garage",
		},
		"data": map[string]any{
			"__typename":                  typename,
			"temperatureSetpoint":         120,
			"temperatureSetpointPending":  false,
			"temperatureSetpointPrevious": 120,
			"temperatureSetpointMaximum":  140,
			"modes":                       []map[string]any{{"mode": "STANDARD", "controls": nil}},
			"isOnline":                    true,
		},
	}
}

// EnergyUseFixture returns a getEnergyUseData payload with two points.
func EnergyUseFixture() map[string]any {
	return map[string]any{
		"average": 2.4,
		"graphData": []map[string]any{
			{"date": "2023-10-30T04:00:00.000Z", "kwh": 2.1},
			{"date": "2023-10-31T04:00:00.000Z", "kwh": 2.7},
		},
		"lifetimeKwh": 1412.9,
		"startDate":   "Oct 30",
	}
}
