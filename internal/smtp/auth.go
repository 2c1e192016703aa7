// Package smtp implements the SMTP front end: an ESMTP server with TLS and
// authentication that runs accepted messages through the footer rewriter
// before handing them to a delivery provider.
package smtp

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
)

// Authenticator verifies SMTP AUTH responses against the single credential
// pair the filter is configured with. The filter sits in front of a real
// relay, so one submission account is all it needs.
type Authenticator struct {
	username string
	password string
}

// NewAuthenticator creates an Authenticator with the given credentials.
// If both username and password are empty, authentication is disabled and
// the listener accepts mail from anyone (the postfix content-filter setup).
func NewAuthenticator(username, password string) *Authenticator {
	return &Authenticator{
		username: username,
		password: password,
	}
}

// Enabled returns true if authentication credentials are configured.
func (a *Authenticator) Enabled() bool {
	return a.username != "" && a.password != ""
}

// VerifyPlain decodes and verifies an AUTH PLAIN response,
// base64(authzid\0authcid\0password) with the authorization identity
// optional and ignored.
func (a *Authenticator) VerifyPlain(encoded string) error {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("invalid base64 encoding")
	}

	parts := strings.SplitN(string(decoded), "\x00", 3)
	if len(parts) != 3 {
		return fmt.Errorf("invalid AUTH PLAIN format")
	}

	return a.verify(parts[1], parts[2])
}

// VerifyLogin verifies AUTH LOGIN credentials after the challenge-response
// flow. Both username and password arrive base64-encoded.
func (a *Authenticator) VerifyLogin(encodedUser, encodedPass string) error {
	user, err := base64.StdEncoding.DecodeString(encodedUser)
	if err != nil {
		return fmt.Errorf("invalid base64 username")
	}

	pass, err := base64.StdEncoding.DecodeString(encodedPass)
	if err != nil {
		return fmt.Errorf("invalid base64 password")
	}

	return a.verify(string(user), string(pass))
}

// verify compares both credentials in constant time so response timing does
// not leak which of the two was wrong.
func (a *Authenticator) verify(user, pass string) error {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.username))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.password))
	if userOK&passOK != 1 {
		return fmt.Errorf("authentication failed")
	}
	return nil
}
