// Package response renders the JSON envelope shared by every endpoint:
// {status, message, data, metadata} on success and
// {status, error{message, statusCode, details, traceId}} on failure.
package response

import (
	"github.com/gofiber/fiber/v2"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	// traceIDLocal is where the tracing middleware keeps the request id.
	traceIDLocal = "trace_id"
)

type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata Meta        `json:"metadata"`
}

type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
	TraceID    string      `json:"traceId,omitempty"`
}

// Meta is the metadata object of a success body; never null.
type Meta map[string]interface{}

// Count is the metadata of a list response.
func Count(n int) Meta {
	return Meta{"count": n}
}

func send(c *fiber.Ctx, code int, message string, data interface{}, meta Meta) error {
	if meta == nil {
		meta = Meta{}
	}
	return c.Status(code).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: meta,
	})
}

// Success sends 200 with the success envelope.
func Success(c *fiber.Ctx, message string, data interface{}, meta Meta) error {
	return send(c, fiber.StatusOK, message, data, meta)
}

// SuccessCreated sends 201 with the success envelope.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, meta Meta) error {
	return send(c, fiber.StatusCreated, message, data, meta)
}

// Error sends statusCode with the error envelope, tagged with the trace id
// of the request when there is one.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	traceID, _ := c.Locals(traceIDLocal).(string)
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
			TraceID:    traceID,
		},
	})
}

// Unauthorized sends 401 in the error envelope.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}
