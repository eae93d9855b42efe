package adversarial_tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jamesprial/go-aosmith-api-wrapper/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
	"github.com/jamesprial/go-aosmith-api-wrapper/test_helpers"
)

// TestConcurrentMixedOperations runs every public operation at once against
// one client.
func TestConcurrentMixedOperations(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	ms := tc.MockServer()
	ms.SetDevices(test_helpers.HeatPumpFixture("J1"), test_helpers.HeatPumpFixture("J2"))

	ctx := context.Background()
	ops := []func() error{
		func() error {
			_, err := tc.IsEverythingOkay(ctx)
			return err
		},
		func() error {
			devices, err := tc.GetDevices(ctx)
			if err == nil && len(devices) != 2 {
				return fmt.Errorf("expected 2 devices, got %d", len(devices))
			}
			return err
		},
		func() error { return tc.UpdateSetpoint(ctx, "J1", 120) },
		func() error {
			return tc.UpdateMode(ctx, &types.ModeRequest{JunctionID: "J2", Mode: "VACATION", Days: types.Days(7)})
		},
		func() error {
			_, err := tc.GetEnergyUseData(ctx, "J1")
			return err
		},
	}

	errs := helpers.CoordinatedStart(100, func(id int) error {
		if err := ops[id%len(ops)](); err != nil {
			return fmt.Errorf("op %d: %w", id, err)
		}
		return nil
	})
	for _, err := range errs {
		t.Error(err)
	}
	if got := ms.IssuedTokens(); got != 1 {
		t.Errorf("expected a single login for all callers, got %d", got)
	}
}

func TestGoroutineLeakDetection(t *testing.T) {
	before := helpers.TakeGoroutineSnapshot()

	func() {
		tc := test_helpers.NewTestClient(nil)
		defer tc.Close()
		tc.MockServer().SetDevices(test_helpers.HeatPumpFixture("J1"))

		errs := helpers.CoordinatedStart(50, func(id int) error {
			_, err := tc.GetDevices(context.Background())
			return err
		})
		for _, err := range errs {
			t.Error(err)
		}
		tc.MockServer().Client().CloseIdleConnections()
	}()

	if _, err := helpers.WaitForGoroutineCleanup(2*time.Second, before.Count, 5); err != nil {
		t.Error(err)
	}
	if err := helpers.DetectGoroutineLeak(before, helpers.TakeGoroutineSnapshot(), 5); err != nil {
		t.Log(err)
	}
}

func TestContextCancellationUnderLoad(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	tc.MockServer().SetDelay(200 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	var cancelled atomic.Int32
	errs := helpers.CoordinatedStart(30, func(id int) error {
		_, err := tc.IsEverythingOkay(ctx)
		if err == nil {
			return fmt.Errorf("caller %d: expected an error", id)
		}
		if !pkgerrs.IsUnknown(err) {
			return fmt.Errorf("caller %d: expected UnknownError, got %T", id, err)
		}
		if errors.Is(err, context.Canceled) {
			cancelled.Add(1)
		}
		return nil
	})
	for _, err := range errs {
		t.Error(err)
	}
	if cancelled.Load() == 0 {
		t.Error("expected context.Canceled in at least one cause chain")
	}
}

// Tokens expire repeatedly while callers keep working. Each caller sees at
// most one 401 per expiry, which the executor absorbs.
func TestRepeatedExpiryUnderLoad(t *testing.T) {
	tc := test_helpers.NewTestClient(nil)
	defer tc.Close()
	ms := tc.MockServer()

	if err := tc.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const rounds = 5
	for round := 0; round < rounds; round++ {
		ms.ExpireTokens()

		var wg sync.WaitGroup
		var failures atomic.Int32
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := tc.IsEverythingOkay(context.Background()); err != nil {
					failures.Add(1)
				}
			}()
		}
		wg.Wait()

		if n := failures.Load(); n != 0 {
			t.Errorf("round %d: %d callers failed", round, n)
		}
	}

	if got := ms.IssuedTokens(); got != rounds+1 {
		t.Errorf("expected %d logins, got %d", rounds+1, got)
	}
}

func TestConcurrentClientsAreIndependent(t *testing.T) {
	helper := test_helpers.NewConcurrentTestHelper(10)
	defer helper.Close()

	errs := helper.RunConcurrentTest(func(tc *test_helpers.TestClient) error {
		tc.MockServer().SetDevices(test_helpers.HeatPumpFixture("J1"))
		if err := tc.UpdateSetpoint(context.Background(), "J1", 130); err != nil {
			return err
		}
		if got := tc.MockServer().IssuedTokens(); got != 1 {
			return fmt.Errorf("expected 1 login, got %d", got)
		}
		return nil
	})
	for i, err := range errs {
		if err != nil {
			t.Errorf("client %d: %v", i, err)
		}
	}

	// Each server saw only its own client, and a cleared log keeps the session.
	for i := 0; i < 10; i++ {
		tc := helper.GetClient(i)
		if err := tc.AssertRequestCount(test_helpers.FieldUpdateSetpoint, 1); err != nil {
			t.Errorf("client %d: %v", i, err)
		}
		tc.Reset()
		if err := tc.UpdateSetpoint(context.Background(), "J1", 125); err != nil {
			t.Errorf("client %d: %v", i, err)
		}
		if err := tc.AssertRequestCount(test_helpers.FieldLogin, 0); err != nil {
			t.Errorf("client %d after reset: %v", i, err)
		}
		if err := tc.AssertRequestCount(test_helpers.FieldUpdateSetpoint, 1); err != nil {
			t.Errorf("client %d after reset: %v", i, err)
		}
	}
	if helper.GetClient(10) != nil {
		t.Error("expected nil for an out-of-range client index")
	}
}
