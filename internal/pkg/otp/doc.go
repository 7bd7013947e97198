// Package otp provides helpers for generating and validating one-time
// passwords (OTP), focused on TOTP (time-based OTP, RFC 6238).
//
// This is typically used for 2FA/MFA flows: generate a secret and URI for an
// authenticator app, then validate user-provided codes. The HMAC and dynamic
// truncation steps are delegated to github.com/pquerna/otp; this package adds
// input validation, a configurable verification window and constant-time
// evaluation of every step inside that window.
package otp
