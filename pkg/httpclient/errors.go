package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

type envelopeError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an error. Bodies in the {"error":{code,message}} envelope keep
// their message.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := string(body)
	var env envelopeError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		message = env.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFoundBy(service, "request", message)
	case resp.StatusCode == http.StatusConflict:
		return &apperrors.AppError{Code: "DUPLICATE_RESOURCE", Message: qualified, Status: http.StatusConflict, Err: apperrors.ErrAlreadyExists}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.InvalidInput(qualified)
	default:
		return apperrors.Unavailable(qualified, fmt.Errorf("status %d", resp.StatusCode))
	}
}
