package handlers

import (
	"mime"
	"strings"

	"simple-bank-api/internal/formatters"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// parseAccountID parses an account identifier from a path or body value
func parseAccountID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}

// negotiate picks the response media type for an Accept header.
// JSON is the default; an empty result means nothing acceptable is offered.
func negotiate(accept string) string {
	if strings.TrimSpace(accept) == "" {
		return echo.MIMEApplicationJSON
	}

	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case echo.MIMEApplicationJSON, "application/*", "*/*":
			return echo.MIMEApplicationJSON
		case formatters.MIMETextCSV, "text/*":
			return formatters.MIMETextCSV
		}
	}
	return ""
}
