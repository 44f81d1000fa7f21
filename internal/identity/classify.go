package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/supabase-community/gotrue-go/types"
)

type operation int

const (
	opSignUp operation = iota
	opSignIn
	opRefresh
	opExchange
	opSignOut
	opRecover
	opAdmin
	opGetUser
)

// APIError is a non-2xx answer from the identity provider
type APIError struct {
	Status    int
	ErrorCode string
	Message   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s %s", e.Status, e.ErrorCode, e.Message)
}

// The SDK reports non-2xx answers as "response status code <n>: <body>"
var statusPattern = regexp.MustCompile(`(?s)^response status code (\d+)(?:: (.*))?$`)

// asAPIError recovers the status and provider error from an SDK error
func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return nil, false
	}
	status, _ := strconv.Atoi(m[1])
	return parseAPIError(status, []byte(m[2])), true
}

// parseAPIError understands both GoTrue error shapes
func parseAPIError(status int, raw []byte) *APIError {
	var body struct {
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	apiErr := &APIError{Status: status, ErrorCode: body.ErrorCode}
	if apiErr.ErrorCode == "" {
		apiErr.ErrorCode = body.Error
	}
	for _, m := range []string{body.Msg, body.ErrorDescription, body.Message} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// classify maps identity provider failures onto the domain taxonomy
func classify(op operation, err error) error {
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		switch op {
		case opRefresh:
			return withCause(domain.ErrRefreshFailed, err)
		case opExchange:
			return withCause(domain.ErrInvalidAuthCode, err)
		}
		return withCause(domain.ErrInvalidCredentials, err)
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return domain.Upstream("Identity Provider Unavailable", err)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		return domain.Upstream("Identity Provider Unavailable", err)
	}

	msg := strings.ToLower(apiErr.ErrorCode + " " + apiErr.Message)

	switch op {
	case opSignUp:
		if strings.Contains(msg, "already registered") || strings.Contains(msg, "already exists") {
			return domain.ErrEmailRegistered
		}
	case opSignIn:
		if strings.Contains(msg, "email not confirmed") || strings.Contains(msg, "email_not_confirmed") {
			return domain.ErrEmailNotConfirmed
		}
		if strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "invalid login") || strings.Contains(msg, "invalid_credentials") {
			return domain.ErrInvalidCredentials
		}
	case opRefresh:
		return withCause(domain.ErrRefreshFailed, err)
	case opExchange:
		return withCause(domain.ErrInvalidAuthCode, err)
	case opGetUser, opSignOut:
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			return withCause(domain.ErrInvalidToken, err)
		}
	case opAdmin:
		if apiErr.Status == http.StatusNotFound {
			return domain.ErrUserNotFound
		}
	}

	return &domain.AppError{Kind: domain.KindValidation, Message: apiErr.Message, Err: err}
}

// withCause keeps sentinel identity while carrying the provider detail for logs
func withCause(sentinel *domain.AppError, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
