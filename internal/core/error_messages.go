package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Data exceeds the maximum size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: Rows have inconsistent columns or broken quoting
//	          Action: Ensure every row has the same number of fields as the header
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file or text was provided
//	          Action: Choose a CSV file or paste data
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The data is empty
//	          Action: Provide a header row followed by data rows
//	          Patterns: "empty file"
//
//	FILE006 - Unreadable source: The file could not be opened
//	          Action: Check the path and file permissions
//	          Patterns: "source unreadable"
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Unknown column: The selected column is not in the data
//	         Action: Reload the column list and choose again
//	         Patterns: "column not found"
//
//	COL002 - Invalid number: The values column contains text
//	         Action: Pick a numeric column or fix the highlighted row
//	         Patterns: "invalid number"
//
//	COL003 - No data: Nothing is loaded yet
//	         Action: Load a CSV file or paste data first
//	         Patterns: "no data loaded"
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Template not found
//	TPL002 - Template has no recognized renderer
//	TPL003 - Template descriptor is invalid
//
// # Render Errors (RND001-RND099)
//
//	RND001 - Chart could not be drawn
//	RND002 - Invalid color in the color map
//	RND003 - Nothing to plot (the selection has no rows)
//	RND004 - Server busy (no load, draw or raster slot free)
//	RND005 - Invalid axis bounds
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Query rejected: only single read-only statements are allowed
//	DB004 - Connection refused
//	DB006 - Timeout
//	DB008 - No database configured
//
// # Session and Request Errors
//
//	SES001  - Session expired
//	UPL004  - Request cancelled
//	UPL005  - Request timed out
//	RATE001 - Too many requests
//	ERR000  - Unknown error (check logs)
//
// # Pattern Matching
//
// Typed errors from this package and package chart are matched first with
// errors.As. Everything else is matched case-insensitively using
// strings.Contains. The first matching pattern wins, so more specific
// patterns are defined before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/radial/internal/chart"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgTooLarge = UserMessage{
		Message: "Data exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "The data is not a valid table",
		Action:  "Ensure every row has the same number of fields as the header",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save file as UTF-8 encoding",
		Code:    "FILE003",
	}
	msgEmpty = UserMessage{
		Message: "The data is empty",
		Action:  "Provide a header row followed by data rows",
		Code:    "FILE005",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be opened",
		Action:  "Check the path and file permissions",
		Code:    "FILE006",
	}
	msgUnknownColumn = UserMessage{
		Message: "The selected column is not in the data",
		Action:  "Reload the column list and choose again",
		Code:    "COL001",
	}
	msgInvalidNumber = UserMessage{
		Message: "The values column contains text that is not a number",
		Action:  "Pick a numeric column or fix the reported row",
		Code:    "COL002",
	}
	msgTemplateNotFound = UserMessage{
		Message: "Chart template not found",
		Action:  "Refresh the template list and pick another template",
		Code:    "TPL001",
	}
	msgNoRenderer = UserMessage{
		Message: "The template does not declare a known chart type",
		Action:  "Check the renderers listed in the template file",
		Code:    "TPL002",
	}
	msgTemplateInvalid = UserMessage{
		Message: "The template file is invalid",
		Action:  "Fix the template file and try again",
		Code:    "TPL003",
	}
	msgRender = UserMessage{
		Message: "The chart could not be drawn",
		Action:  "Check the column selection and axis bounds",
		Code:    "RND001",
	}
	msgInvalidColor = UserMessage{
		Message: "A group color is not a valid color",
		Action:  "Pick the group color again or reset the colors",
		Code:    "RND002",
	}
	msgNothingToPlot = UserMessage{
		Message: "There is nothing to plot",
		Action:  "Load data with at least one row",
		Code:    "RND003",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// File errors
	{pattern: "file too large", msg: msgTooLarge},
	{pattern: "request body too large", msg: msgTooLarge},
	{pattern: "invalid csv", msg: msgInvalidCSV},
	{pattern: "encoding error", msg: msgEncoding},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file or text was provided",
			Action:  "Choose a CSV file or paste data",
			Code:    "FILE004",
		},
	},
	{pattern: "empty file", msg: msgEmpty},
	{pattern: "source unreadable", msg: msgUnreadable},

	// Column errors
	{pattern: "column not found", msg: msgUnknownColumn},
	{pattern: "invalid number", msg: msgInvalidNumber},
	{
		pattern: "no data loaded",
		msg: UserMessage{
			Message: "No data is loaded",
			Action:  "Load a CSV file or paste data first",
			Code:    "COL003",
		},
	},

	// Template and render errors
	{pattern: "template not found", msg: msgTemplateNotFound},
	{pattern: "no renderer found", msg: msgNoRenderer},
	{pattern: "invalid template", msg: msgTemplateInvalid},
	{pattern: "invalid color", msg: msgInvalidColor},
	{pattern: "nothing to plot", msg: msgNothingToPlot},
	{
		pattern: "server busy",
		msg: UserMessage{
			Message: "The studio is busy",
			Action:  "Please wait a moment and try again",
			Code:    "RND004",
		},
	},
	{
		pattern: "invalid axis bounds",
		msg: UserMessage{
			Message: "The y-axis bounds are invalid",
			Action:  "Choose a y-min below the y-max, both between -100 and 100",
			Code:    "RND005",
		},
	},
	{pattern: "render failed", msg: msgRender},

	// Database errors
	{
		pattern: "query rejected",
		msg: UserMessage{
			Message: "Only a single read-only SELECT query is allowed",
			Action:  "Remove data-changing statements from the query",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "no database configured",
		msg: UserMessage{
			Message: "Loading from a database is not enabled",
			Action:  "Set DATABASE_URL to enable SQL queries",
			Code:    "DB008",
		},
	},

	// Session and request errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Load your data again",
			Code:    "SES001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller query or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are matched first; then known error patterns are searched
// (case-insensitive). If nothing matches, a generic fallback with code
// ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// mapTyped maps the typed errors of the loaders, the projector and the
// chart package. Detail that helps the user fix their data is appended.
func mapTyped(err error) (UserMessage, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User, true
	}

	var le *LoadError
	if errors.As(err, &le) {
		var msg UserMessage
		switch le.Kind {
		case LoadTooLarge:
			msg = msgTooLarge
		case LoadMalformed:
			msg = msgInvalidCSV
			if le.Line > 0 {
				msg.Message = fmt.Sprintf("%s (line %d)", msg.Message, le.Line)
			}
		case LoadEncoding:
			msg = msgEncoding
		case LoadEmpty:
			msg = msgEmpty
		default:
			msg = msgUnreadable
		}
		return msg, true
	}

	var pe *ProjectionError
	if errors.As(err, &pe) {
		if pe.Kind == UnknownColumn {
			msg := msgUnknownColumn
			msg.Message = fmt.Sprintf("Column %q is not in the data", pe.Column)
			return msg, true
		}
		msg := msgInvalidNumber
		msg.Message = fmt.Sprintf("Row %d of column %q is not a number: %q", pe.Row, pe.Column, pe.Value)
		return msg, true
	}

	var te *chart.TemplateError
	if errors.As(err, &te) {
		switch te.Kind {
		case chart.TemplateNotFound:
			return msgTemplateNotFound, true
		case chart.NoRendererFound:
			return msgNoRenderer, true
		default:
			return msgTemplateInvalid, true
		}
	}

	var re *chart.RenderError
	if errors.As(err, &re) {
		switch {
		case errors.Is(err, chart.ErrNoData):
			return msgNothingToPlot, true
		case strings.Contains(strings.ToLower(err.Error()), "invalid color"):
			return msgInvalidColor, true
		default:
			return msgRender, true
		}
	}

	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
