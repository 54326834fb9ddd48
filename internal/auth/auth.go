// Package auth verifies unlock-dialog credentials against PAM.
package auth

import (
	"errors"
	"fmt"

	"github.com/msteinert/pam"

	"github.com/tavren/waydesk/internal/logger"
)

// Authenticator runs PAM transactions for one service.
type Authenticator struct {
	service string
}

// New returns an authenticator for the given PAM service name.
func New(service string) *Authenticator {
	return &Authenticator{service: service}
}

// Verify checks a username/password pair. A nil error means the credentials
// were accepted and the account is valid.
func (a *Authenticator) Verify(username, password string) error {
	conv := func(style pam.Style, msg string) (string, error) {
		switch style {
		case pam.PromptEchoOff:
			return password, nil
		case pam.PromptEchoOn:
			return "", nil
		case pam.ErrorMsg:
			logger.Warnf("PAM error: %s", msg)
			return "", nil
		case pam.TextInfo:
			logger.Debugf("PAM info: %s", msg)
			return "", nil
		default:
			return "", errors.New("unexpected conversation style")
		}
	}

	t, err := pam.StartFunc(a.service, username, conv)
	if err != nil {
		return fmt.Errorf("failed to start PAM transaction: %w", err)
	}

	if err := t.Authenticate(0); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err := t.AcctMgmt(0); err != nil {
		return fmt.Errorf("account validation failed: %w", err)
	}
	return nil
}
