package core

// # Error Codes Reference
//
// User-facing messages carry a code so users can quote it to support.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Remove unused rows or columns, or split the file
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Parse error: The file could not be read
//	          Action: Check the file opens in a spreadsheet program and re-save it
//	          Patterns: "parse error"
//
//	FILE003 - Encoding error: The file uses an unknown character set
//	          Action: Save the file as UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Choose a .csv, .xls or .xlsx file
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no data
//	          Action: Choose a file with at least one row of values
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported format: Only CSV and Excel files are supported
//	          Action: Save the file as .csv, .xls or .xlsx
//	          Patterns: "unsupported file format"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - No columns: No columns could be determined
//	         Action: Check that the first row or the data has values
//	         Patterns: "no columns inferred"
//
//	TBL002 - Nothing to export: The table is empty
//	         Action: Import a file with data before exporting
//	         Patterns: "nothing to export"
//
//	TBL003 - Unknown column: The column no longer exists
//	         Action: Refresh the page and try again
//	         Patterns: "unknown column"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Superseded: A newer import replaced this one
//	         Action: No action needed; the newer file is shown
//	         Patterns: "import superseded"
//
//	IMP002 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many imports"
//
// # Request Errors (REQ001, UPL004-UPL005)
//
//	REQ001 - Bad request: The request was not understood
//	         Action: Refresh the page and try again
//	         Patterns: "invalid request"
//
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused rows or columns, or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused rows or columns, or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Only CSV and Excel files are supported",
			Action:  "Save the file as .csv, .xls or .xlsx",
			Code:    "FILE006",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "The file uses an unknown character set",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file opens in a spreadsheet program and re-save it",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a .csv, .xls or .xlsx file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no data",
			Action:  "Choose a file with at least one row of values",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL003)
	// =========================================================================
	{
		pattern: "no columns inferred",
		msg: UserMessage{
			Message: "No columns could be determined",
			Action:  "Check that the first row or the data has values",
			Code:    "TBL001",
		},
	},
	{
		pattern: "nothing to export",
		msg: UserMessage{
			Message: "The table is empty",
			Action:  "Import a file with data before exporting",
			Code:    "TBL002",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The column no longer exists",
			Action:  "Refresh the page and try again",
			Code:    "TBL003",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP002)
	// =========================================================================
	{
		pattern: "import superseded",
		msg: UserMessage{
			Message: "A newer import replaced this one",
			Action:  "No action needed; the newer file is shown",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001, UPL004-UPL005)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request was not understood",
			Action:  "Refresh the page and try again",
			Code:    "REQ001",
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

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error and ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns the
// user message; Unwrap returns the technical error for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err into a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
