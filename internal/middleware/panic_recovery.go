package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"simple-bank-api/internal/errors"

	"github.com/labstack/echo/v4"
)

// PanicRecovery turns a handler panic into a SYSTEM_001 response and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func PanicRecovery(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				req := c.Request()
				logger.ErrorContext(req.Context(), "handler panicked",
					"panic", r,
					"method", req.Method,
					"path", req.URL.Path,
					"stack", string(debug.Stack()),
				)

				// headers already went out; nothing more can be sent
				if c.Response().Committed {
					err = nil
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}
				err = c.JSON(http.StatusInternalServerError, errors.NewSystemErrorResponse(traceID))
			}()

			return next(c)
		}
	}
}
