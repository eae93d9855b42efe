package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone passes requests through to the base transport
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip with a network error
	ChaosConnectionReset

	// ChaosPartialRead returns a body that fails mid-read
	ChaosPartialRead

	// ChaosMalformedResponse returns a 200 whose body is not JSON
	ChaosMalformedResponse

	// ChaosEmptyBody returns a 200 with an empty body
	ChaosEmptyBody

	// ChaosUnauthorized answers every request with 401
	ChaosUnauthorized

	// ChaosStatus answers every request with ChaosConfig.Status
	ChaosStatus

	// ChaosDNSFailure fails the round trip with a lookup error
	ChaosDNSFailure
)

// ChaosConfig configures the chaos transport
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// After lets this many requests through untouched before chaos starts.
	After int

	// Status is the code used by ChaosStatus
	Status int

	// Delay adds artificial delay to every request
	Delay time.Duration
}

// ChaosTransport is an http.RoundTripper that injects failures in front
// of a base transport.
type ChaosTransport struct {
	base       http.RoundTripper
	config     *ChaosConfig
	requestNum atomic.Int64
}

// NewChaosTransport wraps base. A nil base uses http.DefaultTransport.
func NewChaosTransport(base http.RoundTripper, config *ChaosConfig) *ChaosTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if config == nil {
		config = &ChaosConfig{Mode: ChaosNone}
	}
	return &ChaosTransport{base: base, config: config}
}

// Requests returns how many round trips were attempted.
func (c *ChaosTransport) Requests() int {
	return int(c.requestNum.Load())
}

// RoundTrip implements http.RoundTripper interface
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := c.requestNum.Add(1)

	if c.config.Delay > 0 {
		time.Sleep(c.config.Delay)
	}

	mode := c.config.Mode
	if int(n) <= c.config.After {
		mode = ChaosNone
	}

	switch mode {
	case ChaosConnectionReset:
		drain(req)
		return nil, errors.New("connection reset by peer")

	case ChaosDNSFailure:
		drain(req)
		return nil, &DNSError{Err: "no such host", Server: "8.8.8.8"}

	case ChaosPartialRead:
		resp, err := c.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		resp.Body = &partialReadCloser{
			reader:    bytes.NewReader(bodyBytes[:len(bodyBytes)/2]),
			failAfter: len(bodyBytes) / 2,
		}
		return resp, nil

	case ChaosMalformedResponse:
		drain(req)
		return NewMockResponseBuilder().
			WithHeader("Content-Type", "application/json").
			WithBody("This is not valid JSON\x00\x01\x02").
			Build(req), nil

	case ChaosEmptyBody:
		drain(req)
		return NewMockResponseBuilder().Build(req), nil

	case ChaosUnauthorized:
		drain(req)
		return NewMockResponseBuilder().WithStatus(http.StatusUnauthorized).Build(req), nil

	case ChaosStatus:
		drain(req)
		return NewMockResponseBuilder().WithStatus(c.config.Status).Build(req), nil

	default:
		return c.base.RoundTrip(req)
	}
}

func drain(req *http.Request) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}
}

// partialReadCloser is an io.ReadCloser that fails after reading a certain amount
type partialReadCloser struct {
	reader    io.Reader
	failAfter int
	totalRead int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.totalRead >= p.failAfter {
		return 0, errors.New("connection reset during read")
	}

	n, err := p.reader.Read(buf)
	p.totalRead += n

	if p.totalRead >= p.failAfter {
		return n, errors.New("connection reset during read")
	}

	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// DNSError simulates DNS lookup failures
type DNSError struct {
	Err    string
	Server string
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("lookup failed: %s (server: %s)", e.Err, e.Server)
}

// MockResponseBuilder helps build custom mock responses
type MockResponseBuilder struct {
	status  int
	body    string
	headers map[string]string
}

// NewMockResponseBuilder creates a new mock response builder
func NewMockResponseBuilder() *MockResponseBuilder {
	return &MockResponseBuilder{
		status:  http.StatusOK,
		headers: make(map[string]string),
	}
}

// WithStatus sets the HTTP status code
func (b *MockResponseBuilder) WithStatus(code int) *MockResponseBuilder {
	b.status = code
	return b
}

// WithBody sets the response body
func (b *MockResponseBuilder) WithBody(body string) *MockResponseBuilder {
	b.body = body
	return b
}

// WithHeader adds a header to the response
func (b *MockResponseBuilder) WithHeader(key, value string) *MockResponseBuilder {
	b.headers[key] = value
	return b
}

// Build creates the HTTP response
func (b *MockResponseBuilder) Build(req *http.Request) *http.Response {
	header := make(http.Header)
	for k, v := range b.headers {
		header.Set(k, v)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", b.status, http.StatusText(b.status)),
		StatusCode:    b.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(strings.NewReader(b.body)),
		ContentLength: int64(len(b.body)),
		Request:       req,
		Header:        header,
	}
}
