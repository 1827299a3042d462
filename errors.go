package identity

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeLookupFailed     = "IDENTITY_LOOKUP_FAILED"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeMissingSecret    = "MISSING_SIGNING_SECRET"
	TextCodeTooManyAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeAccountSuspended = "ACCOUNT_SUSPENDED"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword covers both an unknown identifier and a wrong
// password. Callers get the same kind for either so an unauthenticated caller
// cannot probe which emails exist.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrLookupFailed is a transient user-store failure (timeout, connectivity).
// It is logged with its own kind but rendered exactly like a credential
// failure at the authentication boundary.
var ErrLookupFailed = goerrors.New("identity lookup failed", goerrors.CategoryInternal).
	WithTextCode(TextCodeLookupFailed).
	WithCode(goerrors.CodeInternal)

// ErrTokenExpired is returned when hydrating a token past its expiry window.
var ErrTokenExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad token shape and signature mismatch.
var ErrTokenMalformed = goerrors.New("session token malformed or signature invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty password material.
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingSigningKey is fatal: without signing key material no token can be
// issued or verified. Raised at startup by config validation, never at runtime.
var ErrMissingSigningKey = goerrors.New("signing secret is not configured", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingSecret).
	WithCode(goerrors.CodeInternal)

// ErrTooManyLoginAttempts is returned while an identifier is cooling down.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountSuspended blocks authentication for suspended accounts.
var ErrAccountSuspended = goerrors.New("account is suspended", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountSuspended).
	WithCode(goerrors.CodeForbidden)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = goerrors.New("unable to parse data", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// IsAuthenticationFailure reports whether err is one of the verification
// failure kinds that must stay externally undifferentiated: unknown user,
// wrong password, throttled identifier, or a transient lookup failure.
func IsAuthenticationFailure(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrMismatchedHashAndPassword) ||
		goerrors.Is(err, ErrIdentityNotFound) ||
		goerrors.Is(err, ErrTooManyLoginAttempts) ||
		goerrors.Is(err, ErrLookupFailed)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
