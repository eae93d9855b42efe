package internal

import (
	"encoding/json"
	"strings"

	pkgerrs "github.com/jamesprial/go-aosmith-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

const (
	invalidCredentialsCode = "INVALID_CREDENTIALS"

	msgInvalidCredentials = "Invalid email address or password"
	msgUnknown            = "Unknown error"
	msgNoData             = "response contained no data"
	errorSeparator        = ", "
)

// Envelope is the raw GraphQL response body. Either field may be absent.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Failed reports whether the response carries an errors field at all.
func (e *Envelope) Failed() bool {
	return len(e.Errors) > 0
}

// DecodeResponse classifies a GraphQL response body and, on success,
// unmarshals its data into out.
//
// A body carrying an "errors" key is a failure: InvalidCredentials if any
// entry has extension code INVALID_CREDENTIALS, Unknown otherwise. A body
// that is not JSON, or that succeeds without data, is Unknown.
func DecodeResponse(body []byte, out any) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}

	if env.Failed() {
		return classifyErrors(env.Errors)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &pkgerrs.UnknownError{Message: msgNoData}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}
	return nil
}

func classifyErrors(raw json.RawMessage) error {
	var errs []types.GraphQLError
	if err := json.Unmarshal(raw, &errs); err != nil {
		return &pkgerrs.UnknownError{Message: msgUnknown, Err: err}
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Extensions.Code == invalidCredentialsCode {
			return &pkgerrs.InvalidCredentialsError{Message: msgInvalidCredentials}
		}
		messages = append(messages, e.Message)
	}

	return &pkgerrs.UnknownError{Message: "Error: " + strings.Join(messages, errorSeparator)}
}
