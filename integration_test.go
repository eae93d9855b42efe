//go:build integration
// +build integration

package aosmith_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	aosmith "github.com/jamesprial/go-aosmith-api-wrapper"
)

// Integration tests require a real A. O. Smith account.
// Set these environment variables, or put them in a .env file:
//   - AOSMITH_EMAIL: the account email
//   - AOSMITH_PASSWORD: the account password
//   - AOSMITH_JUNCTION_ID: (optional) a device to read energy use from
//
// Only read operations are exercised.
//
// Run with: go test -tags=integration -v

func getIntegrationClient(t *testing.T) *aosmith.Client {
	t.Helper()

	// A missing .env file is fine; the variables may come from the environment.
	_ = godotenv.Load()

	email := os.Getenv("AOSMITH_EMAIL")
	password := os.Getenv("AOSMITH_PASSWORD")
	if email == "" || password == "" {
		t.Skip("Skipping integration test: AOSMITH_EMAIL and AOSMITH_PASSWORD must be set")
	}

	client, err := aosmith.NewClient(&aosmith.Config{
		Email:     email,
		Password:  password,
		UserAgent: "go-aosmith-api-wrapper:integration-tests:v1.0.0",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return client
}

func TestIntegration_IsEverythingOkay(t *testing.T) {
	client := getIntegrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := client.IsEverythingOkay(ctx); err != nil {
		t.Fatalf("IsEverythingOkay failed: %v", err)
	}
}

func TestIntegration_GetDevices(t *testing.T) {
	client := getIntegrationClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	devices, err := client.GetDevices(ctx)
	if err != nil {
		t.Fatalf("GetDevices failed: %v", err)
	}

	for i, device := range devices {
		if device.JunctionID == "" {
			t.Errorf("Device %d has empty junction ID", i)
		}
		if !device.IsHeatPump() {
			t.Errorf("Device %d is not a heat pump", i)
		}
		if device.Status.Base().TemperatureSetpointMaximum == 0 {
			t.Errorf("Device %d reported no setpoint maximum", i)
		}
	}
}

func TestIntegration_GetEnergyUseData(t *testing.T) {
	client := getIntegrationClient(t)
	junctionID := os.Getenv("AOSMITH_JUNCTION_ID")
	if junctionID == "" {
		t.Skip("Skipping: AOSMITH_JUNCTION_ID not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := client.GetEnergyUseData(ctx, junctionID)
	if err != nil {
		t.Fatalf("GetEnergyUseData failed: %v", err)
	}
	if data.StartDate == "" {
		t.Error("Expected a start date")
	}
}
