package translator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/firemason/firemason/core/infra/secrets"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies translate failures for status mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindUpstream   Kind = "upstream"
	// KindRequest marks a body that could not be read or decoded.
	KindRequest Kind = "request"
)

const (
	MsgRulesRequired  = "Rules are required"
	MsgAPIKeyRequired = "Gemini API key is required"
	MsgEmptyResponse  = "Empty response from model"
	MsgUnknown        = "Unknown error"

	maxDetailsBytes = 512
)

// Error is a classified translate failure. Message and Details are safe to
// return to the caller: they never contain the API key.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != e.Err.Error() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a translate Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// RequestError wraps a failure to read or decode a translate body.
func RequestError(err error) *Error {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = MsgUnknown
	}
	return &Error{Kind: KindRequest, Message: truncate(msg, maxDetailsBytes), Err: err}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// upstreamError wraps a failed generation call. apiKey is scrubbed from
// everything that can reach the caller or the log.
func upstreamError(err error, apiKey string) *Error {
	msg := strings.TrimSpace(secrets.Scrub(upstreamMessage(err), apiKey))
	if msg == "" {
		msg = MsgUnknown
	}
	return &Error{
		Kind:    KindUpstream,
		Message: msg,
		Details: truncate(secrets.Scrub(describeUpstream(err), apiKey), maxDetailsBytes),
		Err:     err,
	}
}

// upstreamMessage prefers the Google API message over the wrapped error text.
func upstreamMessage(err error) string {
	if err == nil {
		return ""
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && strings.TrimSpace(gerr.Message) != "" {
		return gerr.Message
	}
	return err.Error()
}

// describeUpstream renders provider error metadata (HTTP or gRPC code) when
// the error carries any.
func describeUpstream(err error) string {
	if err == nil {
		return ""
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		parts := []string{fmt.Sprintf("status=%d", gerr.Code)}
		if gerr.Message != "" {
			parts = append(parts, "message="+gerr.Message)
		}
		for _, item := range gerr.Errors {
			if item.Reason != "" {
				parts = append(parts, "reason="+item.Reason)
				break
			}
		}
		return "googleapi: " + strings.Join(parts, " ")
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		return fmt.Sprintf("grpc: code=%s message=%s", st.Code(), st.Message())
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
