// Package aosmith provides a Go client for the A. O. Smith cloud API used by
// iCOMM-enabled heat pump water heaters.
//
// # Overview
//
// The API is a single GraphQL endpoint. The client logs in with the account
// email and password, keeps the returned access token, and attaches it to
// every later request. It exposes a small set of typed operations:
//
//   - GetDevices lists the heat pump water heaters on the account
//   - UpdateSetpoint changes the target water temperature
//   - UpdateMode switches the operating mode, with optional day counts
//   - GetEnergyUseData returns the energy-use history of a device
//   - IsEverythingOkay reports the service health flag
//
// # Quick Start
//
// Only Email and Password are required:
//
//	client, err := aosmith.NewClient(&aosmith.Config{
//		Email:    os.Getenv("AOSMITH_EMAIL"),
//		Password: os.Getenv("AOSMITH_PASSWORD"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	devices, err := client.GetDevices(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, device := range devices {
//		status, _ := device.HeatPump()
//		fmt.Printf("%s: %d°F, mode %s, hot water %s\n",
//			device.Name, status.TemperatureSetpoint, status.Mode, status.HotWaterStatus)
//	}
//
// Devices of any type other than NextGenHeatPump are left out of the listing.
//
// # Changing Modes
//
// A device advertises the modes it accepts. Modes whose controls are
// SELECT_DAYS (typically ELECTRIC and VACATION) take a day count between 1
// and 100, defaulting to 100 when omitted:
//
//	err := client.UpdateMode(ctx, &types.ModeRequest{
//		JunctionID: device.JunctionID,
//		Mode:       "VACATION",
//		Days:       types.Days(7),
//	})
//
// Sending Days for any other mode is an InvalidParameters error.
//
// # Sessions
//
// NewClient performs no network traffic. The first call logs in, and Login
// can be called to do so eagerly. When the server answers 401, the client
// logs in again and replays the request once. Concurrent callers that hit
// an expired session share a single login.
//
// # Error Handling
//
// Every error returned by the client belongs to one of three kinds:
//
//	if err := client.UpdateSetpoint(ctx, id, 150); err != nil {
//		switch errors.KindOf(err) {
//		case errors.KindInvalidCredentials:
//			// the account email or password was rejected
//		case errors.KindInvalidParameters:
//			// the request was refused, often before reaching the network
//		default:
//			// transport failures, unexpected responses, unknown devices
//		}
//	}
//
// Unknown errors wrap their cause, so errors.Is and errors.As from the
// standard library see through them, while Error() never repeats server
// bodies or credentials.
//
// # Rate Limiting
//
// Requests are throttled by a token bucket, 60 per minute with a burst of 10
// unless Config.RateLimit says otherwise. Waiting for a token honors the
// context passed to each call.
//
// # Logging
//
// Pass a slog.Logger to see what the client does:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
//
//	client, err := aosmith.NewClient(&aosmith.Config{
//		// ... credentials ...
//		Logger: logger,
//	})
//
// Each operation is logged with a call_id. Passwords, passcodes and tokens
// are never logged. Device snapshots that contradict themselves, such as a
// setpoint above the reported maximum, are logged at Warn and still returned.
//
// # Metrics
//
// The client records Prometheus metrics for operations, logins and session
// renewals. They are not registered anywhere by default:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(aosmith.MetricsCollectors()...)
//
// # Concurrency
//
// A Client is safe for concurrent use by multiple goroutines. Create one per
// account and share it.
package aosmith
