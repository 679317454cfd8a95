package ftp

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Reply codes used by the session, as defined in RFC 959.
const (
	CodeFileStatusOK     = 150 // about to open data connection
	CodeCommandOK        = 200
	CodeServiceReady     = 220
	CodeServiceClosing   = 221
	CodeClosingData      = 226 // requested file action successful
	CodePassive          = 227
	CodeLoggedIn         = 230
	CodeFileActionOK     = 250
	CodeNeedPassword     = 331
	CodeNotAvailable     = 421
	CodeCantOpenData     = 425
	CodeTransferAborted  = 426
	CodeNotLoggedIn      = 530
	CodeFileUnavailable  = 550
	CodeFileNameNotValid = 553
)

// Response is a parsed control-channel response.
type Response struct {
	// Code is the three-digit response code (e.g., 220, 550)
	Code int

	// Message is the text after the code, trimmed of surrounding whitespace
	Message string
}

// Is2xx returns true if the response code is in the 2xx range (success).
func (r *Response) Is2xx() bool {
	return r.Code >= 200 && r.Code < 300
}

// Is3xx returns true if the response code is in the 3xx range (intermediate).
func (r *Response) Is3xx() bool {
	return r.Code >= 300 && r.Code < 400
}

// Is4xx returns true if the response code is in the 4xx range (temporary failure).
func (r *Response) Is4xx() bool {
	return r.Code >= 400 && r.Code < 500
}

// Is5xx returns true if the response code is in the 5xx range (permanent failure).
func (r *Response) Is5xx() bool {
	return r.Code >= 500 && r.Code < 600
}

// String returns the response in wire form, without the line terminator.
func (r *Response) String() string {
	if r.Message == "" {
		return fmt.Sprintf("%03d", r.Code)
	}
	return fmt.Sprintf("%03d %s", r.Code, r.Message)
}

// ParseResponse parses a raw response line into its code and message.
//
// The first three characters must be decimal digits. Everything after them,
// trimmed of surrounding whitespace, is the message:
//
//	"220 Service ready\r\n" -> {220, "Service ready"}
//	"226"                   -> {226, ""}
//
// A *Error of KindProtocol is returned for empty, short or non-numeric input.
func ParseResponse(raw string) (*Response, error) {
	if raw == "" {
		return nil, protocolError("", "", 0, "empty response")
	}
	code, ok := extractCode(raw)
	if !ok {
		if len(raw) < 3 {
			return nil, protocolError("", "", 0, "response too short: %q", raw)
		}
		return nil, protocolError("", "", 0, "invalid response code: %q", raw[:3])
	}
	return &Response{
		Code:    code,
		Message: strings.TrimSpace(raw[3:]),
	}, nil
}

// MatchesCode reports whether raw starts with the given response code.
// Unlike ParseResponse it never fails; malformed input simply does not match.
func MatchesCode(raw string, expectedCode int) bool {
	code, ok := extractCode(raw)
	return ok && code == expectedCode
}

// ValidateResponse parses raw and checks that its code is one of expected.
// The parsed response is returned in both cases so callers can log it.
func ValidateResponse(raw string, expected ...int) (*Response, error) {
	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(expected, resp.Code) {
		return resp, protocolError("", "", resp.Code, "unexpected response code %d: %s", resp.Code, resp.Message)
	}
	return resp, nil
}

// extractCode returns the numeric value of the first three characters of raw.
func extractCode(raw string) (int, bool) {
	if len(raw) < 3 {
		return 0, false
	}
	for i := 0; i < 3; i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	code, err := strconv.Atoi(raw[:3])
	if err != nil {
		return 0, false
	}
	return code, true
}
