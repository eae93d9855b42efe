package test_helpers

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	aosmith "github.com/jamesprial/go-aosmith-api-wrapper"
)

// MockClientConfig configures a TestClient.
type MockClientConfig struct {
	Email     string
	Password  string
	UserAgent string
	Timeout   time.Duration
	RateLimit *aosmith.RateLimitConfig
	Logger    *slog.Logger
}

// DefaultMockClientConfig returns a config whose credentials the mock server
// accepts and whose rate limit never throttles a test.
func DefaultMockClientConfig() MockClientConfig {
	return MockClientConfig{
		Email:     MockEmail,
		Password:  MockPassword,
		UserAgent: "test-client/1.0",
		Timeout:   5 * time.Second,
		RateLimit: &aosmith.RateLimitConfig{RequestsPerMinute: 600000, Burst: 1000},
	}
}

// TestClient wraps an aosmith.Client talking to its own MockServer.
type TestClient struct {
	*aosmith.Client
	mockServer *MockServer
	config     MockClientConfig
}

// NewTestClient creates a new test client with a mock server
func NewTestClient(config *MockClientConfig) *TestClient {
	if config == nil {
		defaultConfig := DefaultMockClientConfig()
		config = &defaultConfig
	}

	mockServer := NewMockServer()
	httpClient := mockServer.Client()
	httpClient.Timeout = config.Timeout

	client, err := aosmith.NewClient(&aosmith.Config{
		Email:      config.Email,
		Password:   config.Password,
		UserAgent:  config.UserAgent,
		BaseURL:    mockServer.URL(),
		HTTPClient: httpClient,
		RateLimit:  config.RateLimit,
		Logger:     config.Logger,
	})
	if err != nil {
		mockServer.Close()
		panic(fmt.Sprintf("failed to create aosmith client: %v", err))
	}

	return &TestClient{
		Client:     client,
		mockServer: mockServer,
		config:     *config,
	}
}

// MockServer returns the underlying mock server
func (tc *TestClient) MockServer() *MockServer {
	return tc.mockServer
}

// Close closes the test client and mock server
func (tc *TestClient) Close() {
	tc.mockServer.Close()
}

// Reset clears the mock server's request log
func (tc *TestClient) Reset() {
	tc.mockServer.ClearLog()
}

// WaitForRequests waits for a specific number of requests
func (tc *TestClient) WaitForRequests(count int, timeout time.Duration) error {
	return tc.mockServer.WaitForRequests(count, timeout)
}

// AssertRequestCount asserts request count for a root field
func (tc *TestClient) AssertRequestCount(field string, expectedCount int) error {
	return tc.mockServer.AssertRequestCount(field, expectedCount)
}

// GetRequestLog returns the request log
func (tc *TestClient) GetRequestLog() []RequestEntry {
	return tc.mockServer.GetRequestLog()
}

// SetDelay sets response delay
func (tc *TestClient) SetDelay(delay time.Duration) {
	tc.mockServer.SetDelay(delay)
}

// SetupExpiredSession invalidates the client's token on the server side.
func (tc *TestClient) SetupExpiredSession() {
	tc.mockServer.ExpireTokens()
}

// SetupError makes every request to field fail with statusCode.
func (tc *TestClient) SetupError(field string, statusCode int) {
	tc.mockServer.SetResponse(field, &MockResponse{Status: statusCode})
}

// ConcurrentTestHelper runs the same scenario across several independent clients.
type ConcurrentTestHelper struct {
	clients []*TestClient
	mu      sync.RWMutex
}

// NewConcurrentTestHelper creates a helper for concurrent testing
func NewConcurrentTestHelper(clientCount int) *ConcurrentTestHelper {
	helper := &ConcurrentTestHelper{
		clients: make([]*TestClient, clientCount),
	}

	for i := 0; i < clientCount; i++ {
		helper.clients[i] = NewTestClient(nil)
	}

	return helper
}

// GetClient returns a client by index
func (cth *ConcurrentTestHelper) GetClient(index int) *TestClient {
	cth.mu.RLock()
	defer cth.mu.RUnlock()

	if index < 0 || index >= len(cth.clients) {
		return nil
	}

	return cth.clients[index]
}

// Close closes all clients
func (cth *ConcurrentTestHelper) Close() {
	cth.mu.Lock()
	defer cth.mu.Unlock()

	for _, client := range cth.clients {
		client.Close()
	}
}

// RunConcurrentTest runs testFunc once per client, all at the same time.
// The returned slice holds each client's error at its index.
func (cth *ConcurrentTestHelper) RunConcurrentTest(testFunc func(*TestClient) error) []error {
	cth.mu.RLock()
	clients := make([]*TestClient, len(cth.clients))
	copy(clients, cth.clients)
	cth.mu.RUnlock()

	errs := make([]error, len(clients))
	var wg sync.WaitGroup

	for i, client := range clients {
		wg.Add(1)
		go func(index int, tc *TestClient) {
			defer wg.Done()
			errs[index] = testFunc(tc)
		}(i, client)
	}

	wg.Wait()
	return errs
}

// AssertErrorContains asserts that an error contains specific text
func AssertErrorContains(err error, expected string) error {
	if err == nil {
		return fmt.Errorf("expected error containing '%s', got nil", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing '%s', got '%s'", expected, err.Error())
	}
	return nil
}
