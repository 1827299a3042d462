package identity

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MultiTokenValidator tries validators in order until one succeeds.
// It treats ErrTokenMalformed as "try next" and returns the last malformed
// error if all validators fail. Expiry errors are terminal: an expired token
// is expired no matter who issued it.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator builds a MultiTokenValidator, skipping nil entries.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	vs := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			vs = append(vs, v)
		}
	}
	return &MultiTokenValidator{validators: vs}
}

// Validate satisfies the TokenValidator interface.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	if m == nil || len(m.validators) == 0 {
		return nil, ErrUnableToDecodeSession
	}

	var lastErr error
	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}

		if IsTokenExpiredError(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, lastErr
}
