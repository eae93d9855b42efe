package aosmith

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamesprial/go-aosmith-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/validation"
)

const (
	// DefaultBaseURL is the A. O. Smith cloud API base URL. Requests go to
	// DefaultBaseURL + "graphql".
	DefaultBaseURL = "https://r2.wh8.co/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-aosmith-api-wrapper/0.01"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

const (
	msgDeviceNotFound       = "Device not found"
	msgUpdateSetpointFailed = "Failed to update setpoint"
	msgUpdateModeFailed     = "Failed to update mode"
	msgNoEnergyUseData      = "No energy use data returned"
	msgNilModeRequest       = "mode request cannot be nil"
	msgLoginFailed          = "Login failed"
)

// RateLimitConfig controls how requests are throttled before reaching the API.
type RateLimitConfig = internal.RateLimitConfig

// Config holds the configuration for the A. O. Smith client.
//
// Only Email and Password are required:
//
//	config := &Config{
//		Email:    "you@example.com",
//		Password: "your-password",
//	}
type Config struct {
	// Email and Password of the A. O. Smith account. Both are required.
	Email    string
	Password string

	// UserAgent identifies your application to the API.
	// Defaults to DefaultUserAgent if not specified.
	UserAgent string

	// BaseURL for the API.
	// Defaults to DefaultBaseURL if not specified. Usually doesn't need to be changed.
	BaseURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RateLimit throttles outgoing requests. Defaults to 60 requests per
	// minute with a burst of 10.
	RateLimit *RateLimitConfig

	// Logger for structured diagnostics.
	// Optional. Credentials and tokens are never logged.
	Logger *slog.Logger
}

// Executor sends one GraphQL operation and decodes its data into out.
// The internal query executor implements this interface.
type Executor interface {
	Execute(ctx context.Context, op internal.Operation, loginRequired bool, out any) error
}

// Client is the A. O. Smith API client. It is safe for concurrent use.
//
// No network traffic happens until the first call; the client logs in on
// demand and again whenever the server rejects its token.
type Client struct {
	exec      Executor
	session   *internal.Authenticator
	validator *internal.Validator
	logger    *slog.Logger
}

// NewClient creates a new client with the provided configuration.
// It validates the configuration and applies defaults to a copy of it.
//
// Returns an InvalidParametersError if:
//   - config is nil
//   - Email or Password are missing
//   - UserAgent or BaseURL are malformed
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.InvalidParametersError{Message: "config cannot be nil"}
	}
	cfg := *config

	validator := internal.NewValidator()
	if err := validator.ValidateCredentials(cfg.Email, cfg.Password); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	if err := validator.ValidateUserAgent(cfg.UserAgent); err != nil {
		return nil, err
	}

	exec, err := internal.NewClient(cfg.HTTPClient, cfg.BaseURL, cfg.UserAgent, cfg.RateLimit, cfg.Logger)
	if err != nil {
		return nil, err
	}
	session := internal.NewAuthenticator(exec, cfg.Email, cfg.Password, cfg.Logger)
	exec.SetSession(session)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		exec:      exec,
		session:   session,
		validator: validator,
		logger:    logger,
	}, nil
}

// Login authenticates immediately instead of waiting for the first call.
// Calling it is optional. A login answered without an access token fails
// with an UnknownError.
func (c *Client) Login(ctx context.Context) error {
	if err := c.session.Login(ctx); err != nil {
		return err
	}
	if _, ok := c.session.Token(); !ok {
		return &pkgerrs.UnknownError{Message: msgLoginFailed}
	}
	return nil
}

// IsEverythingOkay reports the service health flag. It requires a session.
func (c *Client) IsEverythingOkay(ctx context.Context) (bool, error) {
	var data types.StatusResponseData
	if err := c.exec.Execute(ctx, internal.StatusOperation(), true, &data); err != nil {
		return false, err
	}
	return data.Status.IsEverythingOkay, nil
}

// GetDevices lists the account's heat pump water heaters. Devices of any
// other type are left out.
func (c *Client) GetDevices(ctx context.Context) ([]*types.Device, error) {
	var data types.DevicesResponseData
	if err := c.exec.Execute(ctx, internal.DevicesOperation(), true, &data); err != nil {
		return nil, err
	}

	devices := make([]*types.Device, 0, len(data.Devices))
	for _, device := range data.Devices {
		if device == nil || !device.IsHeatPump() {
			continue
		}
		if err := validation.ValidateDevice(device); err != nil {
			c.logger.Warn("inconsistent device snapshot", "junction_id", device.JunctionID, "error", err)
		}
		devices = append(devices, device)
	}
	c.logger.Debug("listed devices", "total", len(data.Devices), "heat_pumps", len(devices))
	return devices, nil
}

func (c *Client) getDeviceByJunctionID(ctx context.Context, junctionID string) (*types.Device, error) {
	devices, err := c.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, device := range devices {
		if device.JunctionID == junctionID {
			return device, nil
		}
	}
	return nil, &pkgerrs.UnknownError{Message: msgDeviceNotFound}
}

// UpdateSetpoint sets the target water temperature of a device.
//
// Setpoints below 95 are rejected without any network call. Setpoints above
// the device's reported maximum are rejected after looking the device up.
func (c *Client) UpdateSetpoint(ctx context.Context, junctionID string, setpoint int) error {
	if err := c.validator.ValidateSetpointFloor(setpoint); err != nil {
		return err
	}

	device, err := c.getDeviceByJunctionID(ctx, junctionID)
	if err != nil {
		return err
	}
	if err := c.validator.ValidateSetpointCeiling(setpoint, device.Status); err != nil {
		return err
	}

	var data types.UpdateSetpointResponseData
	if err := c.exec.Execute(ctx, internal.UpdateSetpointOperation(junctionID, setpoint), true, &data); err != nil {
		return err
	}
	if data.UpdateSetpoint == nil || !*data.UpdateSetpoint {
		return &pkgerrs.UnknownError{Message: msgUpdateSetpointFailed}
	}
	return nil
}

// UpdateMode switches the operating mode of a device.
//
// The mode must be one the device advertises. Modes with SELECT_DAYS
// controls take request.Days (1 to 100, default 100); for any other mode
// request.Days must be nil.
func (c *Client) UpdateMode(ctx context.Context, request *types.ModeRequest) error {
	if request == nil {
		return &pkgerrs.InvalidParametersError{Message: msgNilModeRequest}
	}

	device, err := c.getDeviceByJunctionID(ctx, request.JunctionID)
	if err != nil {
		return err
	}

	days, err := c.validator.ResolveModeDays(device.Status, request.Mode, request.Days)
	if err != nil {
		return err
	}

	var data types.UpdateModeResponseData
	op := internal.UpdateModeOperation(request.JunctionID, request.Mode, days)
	if err := c.exec.Execute(ctx, op, true, &data); err != nil {
		return err
	}
	if data.UpdateMode == nil || !*data.UpdateMode {
		return &pkgerrs.UnknownError{Message: msgUpdateModeFailed}
	}
	return nil
}

// GetEnergyUseData returns the energy-use history of a device.
func (c *Client) GetEnergyUseData(ctx context.Context, junctionID string) (*types.EnergyUseData, error) {
	device, err := c.getDeviceByJunctionID(ctx, junctionID)
	if err != nil {
		return nil, err
	}

	var data types.EnergyUseResponseData
	if err := c.exec.Execute(ctx, internal.EnergyUseOperation(device.DSN, device.DeviceType), true, &data); err != nil {
		return nil, err
	}
	if data.GetEnergyUseData == nil {
		return nil, &pkgerrs.UnknownError{Message: msgNoEnergyUseData}
	}
	if err := validation.ValidateEnergyUseData(data.GetEnergyUseData); err != nil {
		c.logger.Warn("inconsistent energy use data", "junction_id", junctionID, "error", err)
	}
	return data.GetEnergyUseData, nil
}

// MetricsCollectors returns the Prometheus collectors shared by every client.
// Register them with your own registry; the library never registers them.
func MetricsCollectors() []prometheus.Collector {
	return internal.MetricsCollectors()
}
