package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a failed credential or token check.
var ErrUnauthorized = errors.New("unauthorized")

// ErrTokenMissing indicates that no token was presented at all.
// Callers use this to distinguish "not logged in" from a rejected token.
var ErrTokenMissing = errors.New("token missing")

// ErrTokenExpired indicates a token whose signature verified but whose expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid indicates a token with a bad signature or malformed payload.
var ErrTokenInvalid = errors.New("token invalid")

// ErrResetTokenInvalid indicates a password reset token that does not match
// any stored value or has expired. The two cases are deliberately not
// distinguished to the caller.
var ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired")
