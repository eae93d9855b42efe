package test_helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jamesprial/go-aosmith-api-wrapper/internal"
)

// Root field names the mock server routes on.
const (
	FieldLogin          = "login"
	FieldStatus         = "status"
	FieldDevices        = "devices"
	FieldUpdateSetpoint = "updateSetpoint"
	FieldUpdateMode     = "updateMode"
	FieldEnergyUse      = "getEnergyUseData"

	fieldUnknown = "unknown"
)

// Test credentials accepted by a fresh MockServer.
const (
	MockEmail    = "test@example.com"
	MockPassword = "test-password"
)

// MockServer is a scriptable stand-in for the A. O. Smith GraphQL endpoint.
//
// Requests are routed on the root field of the GraphQL document. Login
// checks the passcode against the configured credentials and issues a fresh
// bearer token; every other field requires one of the issued tokens unless
// auth enforcement is turned off.
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	passcode    string
	tokens      map[string]bool
	issued      int
	enforceAuth bool
	responses   map[string]*MockResponse
	queued      map[string][]*MockResponse
	devices     []map[string]any
	energyUse   map[string]any
	delay       time.Duration

	logMutex   sync.Mutex
	requestLog []RequestEntry
	callCount  map[string]int
}

// RequestEntry records one request as the server saw it.
type RequestEntry struct {
	Method        string
	Path          string
	Field         string
	Authorization string
	UserAgent     string
	Query         string
	Variables     map[string]any
	Timestamp     time.Time
	ResponseCode  int
}

// MockResponse is a canned reply. A zero Status means 200.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

type graphQLBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// NewMockServer starts a mock server accepting MockEmail and MockPassword.
func NewMockServer() *MockServer {
	ms := &MockServer{
		tokens:      make(map[string]bool),
		enforceAuth: true,
		responses:   make(map[string]*MockResponse),
		queued:      make(map[string][]*MockResponse),
		devices:     []map[string]any{},
		energyUse:   EnergyUseFixture(),
		callCount:   make(map[string]int),
	}
	ms.SetCredentials(MockEmail, MockPassword)
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server, with a trailing slash.
func (ms *MockServer) URL() string {
	return ms.server.URL + "/"
}

// Client returns an HTTP client wired to the server.
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetCredentials changes the credentials login accepts.
func (ms *MockServer) SetCredentials(email, password string) {
	passcode, err := internal.BuildPasscode(email, password)
	if err != nil {
		panic(fmt.Sprintf("failed to build passcode: %v", err))
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.passcode = passcode
}

// SetEnforceAuth toggles bearer-token checks on non-login fields.
func (ms *MockServer) SetEnforceAuth(enforce bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.enforceAuth = enforce
}

// ExpireTokens invalidates every issued token so the next authenticated
// request gets a 401.
func (ms *MockServer) ExpireTokens() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.tokens = make(map[string]bool)
}

// IssuedTokens returns how many tokens login has handed out.
func (ms *MockServer) IssuedTokens() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.issued
}

// SetResponse replaces the built-in handling of field with a fixed reply.
func (ms *MockServer) SetResponse(field string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[field] = response
}

// QueueResponse adds a one-shot reply for field, used before any fixed or
// built-in reply. Queued replies are consumed in order.
func (ms *MockServer) QueueResponse(field string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.queued[field] = append(ms.queued[field], response)
}

// SetDevices sets the device list returned by the devices field.
func (ms *MockServer) SetDevices(devices ...map[string]any) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.devices = devices
}

// SetEnergyUse sets the payload returned by getEnergyUseData. nil returns
// a null payload.
func (ms *MockServer) SetEnergyUse(data map[string]any) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.energyUse = data
}

// SetDelay adds delay to all responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.delay = delay
}

// GetRequestLog returns the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// GetCallCount returns how many requests targeted field.
func (ms *MockServer) GetCallCount(field string) int {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return ms.callCount[field]
}

// TotalCalls returns the number of requests received.
func (ms *MockServer) TotalCalls() int {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return len(ms.requestLog)
}

// ClearLog clears the request log
func (ms *MockServer) ClearLog() {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	ms.requestLog = ms.requestLog[:0]
	ms.callCount = make(map[string]int)
}

// WaitForRequests waits for a specific number of requests to be made
func (ms *MockServer) WaitForRequests(count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if ms.TotalCalls() >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d requests", count)
		case <-ticker.C:
		}
	}
}

// AssertRequestCount asserts that a specific number of requests targeted field.
func (ms *MockServer) AssertRequestCount(field string, expectedCount int) error {
	actualCount := ms.GetCallCount(field)
	if actualCount != expectedCount {
		return fmt.Errorf("expected %d requests to %s, got %d", expectedCount, field, actualCount)
	}
	return nil
}

// GetLastRequest returns the last request that targeted field.
func (ms *MockServer) GetLastRequest(field string) (*RequestEntry, error) {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()

	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Field == field {
			entry := ms.requestLog[i]
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("no requests found for field: %s", field)
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry := RequestEntry{
		Method:        r.Method,
		Path:          r.URL.Path,
		Field:         fieldUnknown,
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
		Timestamp:     time.Now(),
	}

	status, body, headers, delay := ms.route(r, &entry)
	entry.ResponseCode = status
	ms.record(entry)

	if delay > 0 {
		time.Sleep(delay)
	}
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (ms *MockServer) record(entry RequestEntry) {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	ms.requestLog = append(ms.requestLog, entry)
	ms.callCount[entry.Field]++
}

func (ms *MockServer) route(r *http.Request, entry *RequestEntry) (int, string, map[string]string, time.Duration) {
	if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
		return http.StatusNotFound, "", nil, 0
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return http.StatusBadRequest, "", nil, 0
	}
	var req graphQLBody
	if err := json.Unmarshal(raw, &req); err != nil {
		return http.StatusBadRequest, "", nil, 0
	}
	entry.Query = req.Query
	entry.Variables = req.Variables

	field, err := rootField(req.Query)
	if err != nil {
		return http.StatusOK, ErrorBody("", err.Error()), nil, 0
	}
	entry.Field = field

	ms.mu.Lock()
	defer ms.mu.Unlock()

	delay := ms.delay
	if queue := ms.queued[field]; len(queue) > 0 {
		resp := queue[0]
		ms.queued[field] = queue[1:]
		return statusOrOK(resp.Status), resp.Body, resp.Headers, delay + resp.Delay
	}
	if resp, ok := ms.responses[field]; ok {
		return statusOrOK(resp.Status), resp.Body, resp.Headers, delay + resp.Delay
	}

	if field == FieldLogin {
		return http.StatusOK, ms.login(req.Variables), nil, delay
	}

	if ms.enforceAuth {
		token := strings.TrimPrefix(entry.Authorization, "Bearer ")
		if !ms.tokens[token] {
			return http.StatusUnauthorized, "", nil, delay
		}
	}

	return http.StatusOK, ms.builtin(field, req.Variables), nil, delay
}

// login must be called with ms.mu held.
func (ms *MockServer) login(variables map[string]any) string {
	passcode, _ := variables["passcode"].(string)
	if passcode != ms.passcode {
		return ErrorBody("INVALID_CREDENTIALS", "Invalid email address or password")
	}
	ms.issued++
	token := fmt.Sprintf("mock-token-%d", ms.issued)
	ms.tokens[token] = true
	return DataBody(map[string]any{
		"login": map[string]any{
			"user": map[string]any{
				"tokens": map[string]any{
					"accessToken":  token,
					"idToken":      "mock-id-token",
					"refreshToken": "mock-refresh-token",
				},
			},
		},
	})
}

// builtin must be called with ms.mu held.
func (ms *MockServer) builtin(field string, variables map[string]any) string {
	switch field {
	case FieldStatus:
		return DataBody(map[string]any{"status": map[string]any{"isEverythingOkay": true}})
	case FieldDevices:
		return DataBody(map[string]any{"devices": ms.devices})
	case FieldUpdateSetpoint:
		return DataBody(map[string]any{"updateSetpoint": true})
	case FieldUpdateMode:
		return DataBody(map[string]any{"updateMode": true})
	case FieldEnergyUse:
		if ms.energyUse == nil {
			return DataBody(map[string]any{"getEnergyUseData": nil})
		}
		return DataBody(map[string]any{"getEnergyUseData": ms.energyUse})
	default:
		return ErrorBody("", fmt.Sprintf("Cannot query field %q", field))
	}
}

func rootField(query string) (string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return "", err
	}
	if len(doc.Operations) == 0 {
		return "", fmt.Errorf("no operation in document")
	}
	for _, sel := range doc.Operations[0].SelectionSet {
		if f, ok := sel.(*ast.Field); ok {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("operation selects no fields")
}

func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

// DataBody renders a successful GraphQL response carrying data.
func DataBody(data any) string {
	b, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		panic(fmt.Sprintf("failed to marshal data: %v", err))
	}
	return string(b)
}

// ErrorBody renders a failed GraphQL response with one error per message.
// A non-empty code is attached to every error as extensions.code.
func ErrorBody(code string, messages ...string) string {
	errs := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		e := map[string]any{"message": msg}
		if code != "" {
			e["extensions"] = map[string]any{"code": code}
		}
		errs = append(errs, e)
	}
	b, err := json.Marshal(map[string]any{"errors": errs, "data": nil})
	if err != nil {
		panic(fmt.Sprintf("failed to marshal errors: %v", err))
	}
	return string(b)
}
