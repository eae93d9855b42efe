package internal

// Operation is one GraphQL request: a fixed document plus its variables.
type Operation struct {
	// Name identifies the operation in logs and metrics. It is not sent.
	Name      string
	Query     string
	Variables map[string]any

	// login marks the login operation itself, whose 401s are replayed
	// without a nested login.
	login bool
}

const loginQuery = "query login($passcode: String) { login(passcode: $passcode) { user { tokens { accessToken idToken refreshToken } } } }"

const statusQuery = "{ status { isEverythingOkay } }"

const devicesQuery = `
query devices($forceUpdate: Boolean, $junctionIds: [String]) {
    devices(forceUpdate: $forceUpdate, junctionIds: $junctionIds) {
        brand
        model
        deviceType
        dsn
        junctionId
        name
        serial
        install {
            location
        }
        data {
            __typename
            temperatureSetpoint
            temperatureSetpointPending
            temperatureSetpointPrevious
            temperatureSetpointMaximum
            modes {
                mode
                controls
            }
            isOnline
            ... on NextGenHeatPump {
                firmwareVersion
                hotWaterStatus
                mode
                modePending
                vacationModeRemainingDays
                electricModeRemainingDays
            }
        }
    }
}
`

const updateSetpointMutation = "mutation updateSetpoint($junctionId: String!, $value: Int!) { updateSetpoint(junctionId: $junctionId, value: $value) }"

const updateModeMutation = "mutation updateMode($junctionId: String!, $mode: ModeInput!) { updateMode(junctionId: $junctionId, mode: $mode) }"

const energyUseQuery = "query getEnergyUseData($dsn: String!, $deviceType: DeviceType!) { getEnergyUseData(dsn: $dsn, deviceType: $deviceType) { average graphData { date kwh } lifetimeKwh startDate } }"

// LoginOperation builds the login query for an encoded passcode.
func LoginOperation(passcode string) Operation {
	return Operation{
		Name:      "login",
		Query:     loginQuery,
		Variables: map[string]any{"passcode": passcode},
		login:     true,
	}
}

// StatusOperation builds the service health query.
func StatusOperation() Operation {
	return Operation{Name: "status", Query: statusQuery, Variables: map[string]any{}}
}

// DevicesOperation builds the device listing query. forceUpdate is always
// set so the server bypasses its cache; junctionIds is never sent.
func DevicesOperation() Operation {
	return Operation{
		Name:      "devices",
		Query:     devicesQuery,
		Variables: map[string]any{"forceUpdate": true},
	}
}

// UpdateSetpointOperation builds the setpoint mutation.
func UpdateSetpointOperation(junctionID string, value int) Operation {
	return Operation{
		Name:  "updateSetpoint",
		Query: updateSetpointMutation,
		Variables: map[string]any{
			"junctionId": junctionID,
			"value":      value,
		},
	}
}

// UpdateModeOperation builds the mode mutation. days is only included when non-nil.
func UpdateModeOperation(junctionID, mode string, days *int) Operation {
	input := map[string]any{"mode": mode}
	if days != nil {
		input["days"] = *days
	}
	return Operation{
		Name:  "updateMode",
		Query: updateModeMutation,
		Variables: map[string]any{
			"junctionId": junctionID,
			"mode":       input,
		},
	}
}

// EnergyUseOperation builds the energy-use query for a device.
func EnergyUseOperation(dsn, deviceType string) Operation {
	return Operation{
		Name:  "getEnergyUseData",
		Query: energyUseQuery,
		Variables: map[string]any{
			"dsn":        dsn,
			"deviceType": deviceType,
		},
	}
}
