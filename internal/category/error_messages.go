package category

// error_messages.go maps technical errors to user-facing messages with a
// short code that support staff can look up.
//
//	CAT001 - Catalog unavailable         ("failed to load catalog")
//	CAT002 - Catalog integrity fault     ("integrity fault")
//	CAT003 - Catalog column missing      ("missing catalog column")
//	CAT004 - Unknown group code          ("unknown group code")
//	VAL001 - Invalid use level           ("invalid number")
//	VAL002 - Invalid consumers-of value  ("invalid consumers of")
//	VAL003 - Column not editable         ("is not editable")
//	VAL004 - Unreadable table snapshot   ("invalid table snapshot")
//	SES001 - Session expired             ("session not found")
//	SES002 - No exposure input yet       ("no exposure input")
//	SES003 - Nothing to calculate        ("nothing to calculate")
//	SES004 - Action not allowed now      ("invalid state transition")
//	IMP001 - Import too large            ("file too large")
//	RES001 - Unknown results pane        ("unknown pane")
//	RATE001 - Rate limited               ("rate limit")
//	REQ001 - Request timed out           ("context deadline exceeded")
//	ERR000 - Anything else
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-friendly description of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "failed to load catalog",
		msg: UserMessage{
			Message: "The category catalog could not be loaded",
			Action:  "Check that the catalog file is available and try again",
			Code:    "CAT001",
		},
	},
	{
		pattern: "integrity fault",
		msg: UserMessage{
			Message: "The category catalog contains an unreadable group code",
			Action:  "Contact support with this code",
			Code:    "CAT002",
		},
	},
	{
		pattern: "missing catalog column",
		msg: UserMessage{
			Message: "The category catalog is missing a required column",
			Action:  "The catalog needs 'Group Code' and 'Group Name' columns",
			Code:    "CAT003",
		},
	},
	{
		pattern: "unknown group code",
		msg: UserMessage{
			Message: "That category is not part of the table",
			Action:  "Reload the page and try again",
			Code:    "CAT004",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Use level must be a number",
			Action:  "Enter a value in mg/kg, for example 12.5, or leave it blank",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid consumers of",
		msg: UserMessage{
			Message: "Consumers of must be Yes or No",
			Action:  "Pick Yes or No from the list",
			Code:    "VAL002",
		},
	},
	{
		pattern: "is not editable",
		msg: UserMessage{
			Message: "This column cannot be edited",
			Action:  "Only use level and consumers of can be changed",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid table snapshot",
		msg: UserMessage{
			Message: "The table sent by the page could not be read",
			Action:  "Reload the page and try again",
			Code:    "VAL004",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your editing session has expired",
			Action:  "Reload the page to start again",
			Code:    "SES001",
		},
	},
	{
		pattern: "no exposure input",
		msg: UserMessage{
			Message: "No exposure input has been calculated yet",
			Action:  "Enter use levels and click Calculate exposure first",
			Code:    "SES002",
		},
	},
	{
		pattern: "nothing to calculate",
		msg: UserMessage{
			Message: "No category has a use level above zero",
			Action:  "Enter at least one use level greater than zero",
			Code:    "SES003",
		},
	},
	{
		pattern: "invalid state transition",
		msg: UserMessage{
			Message: "That action is not available right now",
			Action:  "Reload the page and try again",
			Code:    "SES004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The import file is too large",
			Action:  "Import a file exported from this tool",
			Code:    "IMP001",
		},
	},
	{
		pattern: "unknown pane",
		msg: UserMessage{
			Message: "That results view does not exist",
			Action:  "Pick one of the result tabs",
			Code:    "RES001",
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
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
