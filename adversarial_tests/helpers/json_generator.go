package helpers

import (
	"fmt"
	"strings"
)

// JSONGenerator creates malicious and malformed GraphQL response bodies
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// GenerateMalformedEnvelopes returns bodies that must decode to an Unknown error.
func (g *JSONGenerator) GenerateMalformedEnvelopes() []string {
	return []string{
		// Not JSON
		``,
		`not json`,
		`{`,
		`{"data": {"status": `,
		"\x00\x01\x02",

		// Wrong top-level shape
		`[]`,
		`"data"`,
		`42`,
		`null`,

		// No data
		`{}`,
		`{"data": null}`,
		`{"extensions": {"cost": 1}}`,

		// Errors of the wrong shape
		`{"errors": "boom"}`,
		`{"errors": {"message": "boom"}}`,
		`{"errors": 1}`,

		// Errors present, even when empty or alongside data
		`{"errors": []}`,
		`{"errors": null, "data": {"status": {"isEverythingOkay": true}}}`,
		`{"errors": [{"message": "partial"}], "data": {"status": {"isEverythingOkay": true}}}`,

		// Data of the wrong type for the target
		`{"data": {"status": "okay"}}`,
		`{"data": {"status": {"isEverythingOkay": "yes"}}}`,
		`{"data": []}`,
	}
}

// GenerateCredentialErrors returns failed envelopes that carry the
// INVALID_CREDENTIALS code somewhere in their error list.
func (g *JSONGenerator) GenerateCredentialErrors() []string {
	return []string{
		`{"errors": [{"message": "bad", "extensions": {"code": "INVALID_CREDENTIALS"}}]}`,
		`{"errors": [{"message": "first"}, {"message": "bad", "extensions": {"code": "INVALID_CREDENTIALS"}}]}`,
		`{"errors": [{"message": "bad", "extensions": {"code": "INVALID_CREDENTIALS", "exception": {"message": "x"}}}], "data": {"login": null}}`,
	}
}

// GenerateNearMissCodes returns failed envelopes whose codes resemble but
// do not equal INVALID_CREDENTIALS.
func (g *JSONGenerator) GenerateNearMissCodes() []string {
	codes := []string{"invalid_credentials", "INVALID_CREDENTIAL", " INVALID_CREDENTIALS", "INVALID_CREDENTIALS\u200B", "UNAUTHENTICATED"}
	bodies := make([]string, 0, len(codes))
	for _, code := range codes {
		bodies = append(bodies, fmt.Sprintf(`{"errors": [{"message": "m", "extensions": {"code": %q}}]}`, code))
	}
	return bodies
}

// GenerateMalformedDevices returns device objects that must fail to decode.
func (g *JSONGenerator) GenerateMalformedDevices() []string {
	return []string{
		`{"junctionId": "J1", "data": "not an object"}`,
		`{"junctionId": "J1", "data": {"__typename": "NextGenHeatPump", "temperatureSetpointMaximum": "hot"}}`,
		`{"junctionId": "J1", "data": {"__typename": "NextGenHeatPump", "modes": {"mode": "HYBRID"}}}`,
		`{"junctionId": "J1", "data": {"__typename": 7}}`,
		`{"junctionId": 12, "data": null}`,
	}
}

// GenerateOddDevices returns device objects that decode but are not heat pumps.
func (g *JSONGenerator) GenerateOddDevices() []string {
	return []string{
		`{"junctionId": "J1", "data": null}`,
		`{"junctionId": "J1"}`,
		`{"junctionId": "J1", "data": {}}`,
		`{"junctionId": "J1", "data": {"__typename": ""}}`,
		`{"junctionId": "J1", "data": {"__typename": "nextgenheatpump"}}`,
		`{"junctionId": "J1", "data": {"__typename": "NextGenHeatPump2"}}`,
	}
}

// GenerateJSONBomb creates deeply nested arrays under data.
func (g *JSONGenerator) GenerateJSONBomb(depth int) string {
	return `{"data": ` + strings.Repeat("[", depth) + strings.Repeat("]", depth) + `}`
}

// GenerateLargeErrorList creates a failed envelope with size errors.
func (g *JSONGenerator) GenerateLargeErrorList(size int) string {
	var sb strings.Builder
	sb.WriteString(`{"errors": [`)
	for i := 0; i < size; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"message": "error %d"}`, i)
	}
	sb.WriteString(`]}`)
	return sb.String()
}
