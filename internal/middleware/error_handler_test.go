package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

// ErrorHandlerTestSuite defines the test suite for error handler middleware
type ErrorHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	handler *ErrorHandler
}

// SetupTest runs before each test
func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.handler = NewErrorHandler(prometheus.NewRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.echo.HTTPErrorHandler = s.handler.Handle
}

// TestErrorHandlerTestSuite runs the test suite
func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) newContext() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

// TestHandle_EchoHTTPError tests handling of Echo HTTP errors
func (s *ErrorHandlerTestSuite) TestHandle_EchoHTTPError() {
	c, rec := s.newContext()
	c.Set(TraceIDContextKey, "test-trace-id")

	s.handler.Handle(echo.NewHTTPError(http.StatusNotFound, "Resource not found"), c)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "test-trace-id")
	s.Contains(rec.Body.String(), "Resource not found")
	s.Contains(rec.Body.String(), "ACCOUNT_001")
}

// TestHandle_GenericError tests handling of generic errors
func (s *ErrorHandlerTestSuite) TestHandle_GenericError() {
	c, rec := s.newContext()
	c.Set(TraceIDContextKey, "test-trace-id")

	s.handler.Handle(errors.New("generic error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_001")
	s.NotContains(rec.Body.String(), "generic error")
	s.Contains(rec.Header().Get("Content-Type"), "application/json")
}

// TestHandle_NoTraceID tests error handling without trace ID
func (s *ErrorHandlerTestSuite) TestHandle_NoTraceID() {
	c, rec := s.newContext()

	s.handler.Handle(errors.New("test error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "unknown")
}

// TestHandle_ValidationErrors tests handling of struct validation failures
func (s *ErrorHandlerTestSuite) TestHandle_ValidationErrors() {
	type transfer struct {
		SenderID string `validate:"required,uuid"`
	}
	err := validator.New().Struct(transfer{SenderID: "nope"})
	s.Require().Error(err)

	c, rec := s.newContext()
	s.handler.Handle(err, c)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_001")
	s.Contains(rec.Body.String(), "SenderID: must be a valid UUID")
}

// TestHandle_CommittedResponse tests that handler doesn't process committed responses
func (s *ErrorHandlerTestSuite) TestHandle_CommittedResponse() {
	c, rec := s.newContext()
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})

	s.handler.Handle(errors.New("test error"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "ok")
}

// TestHandle_CountsErrors tests the api_errors_total counter
func (s *ErrorHandlerTestSuite) TestHandle_CountsErrors() {
	c, _ := s.newContext()
	s.handler.Handle(echo.NewHTTPError(http.StatusTooManyRequests), c)

	s.Equal(1.0, testutil.ToFloat64(s.handler.apiErrors.WithLabelValues("SYSTEM_006", c.Path(), "429")))
}

// TestMapHTTPStatusToErrorCode_AllStatuses tests error code mapping
func (s *ErrorHandlerTestSuite) TestMapHTTPStatusToErrorCode_AllStatuses() {
	testCases := []struct {
		status       int
		expectedCode string
	}{
		{http.StatusBadRequest, "VALIDATION_001"},
		{http.StatusNotFound, "ACCOUNT_001"},
		{http.StatusMethodNotAllowed, "VALIDATION_001"},
		{http.StatusNotAcceptable, "REQUEST_001"},
		{http.StatusTooManyRequests, "SYSTEM_006"},
		{http.StatusInternalServerError, "SYSTEM_001"},
		{http.StatusServiceUnavailable, "SYSTEM_003"},
		{999, "SYSTEM_005"},
	}

	for _, tc := range testCases {
		s.Run(http.StatusText(tc.status), func() {
			c, rec := s.newContext()
			c.Set(TraceIDContextKey, "test-trace-id")

			s.handler.Handle(echo.NewHTTPError(tc.status), c)

			s.Equal(tc.status, rec.Code)
			s.Contains(rec.Body.String(), tc.expectedCode)
		})
	}
}
