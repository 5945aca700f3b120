package destination

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by provider clients. Callers classify with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("provider rejected credential")
	ErrTransport     = errors.New("transport failure")
	ErrMisconfigured = errors.New("credential not configured")
)

const notConfigured = "NOT_CONFIGURED"

// CheckCredential reports ErrMisconfigured for an empty or placeholder key.
func CheckCredential(provider, key string) error {
	k := strings.TrimSpace(key)
	switch {
	case k == "":
		return fmt.Errorf("%s: %w: key is empty", provider, ErrMisconfigured)
	case k == notConfigured,
		strings.HasPrefix(k, "YOUR_") && strings.HasSuffix(k, "_HERE"):
		return fmt.Errorf("%s: %w: key is a placeholder", provider, ErrMisconfigured)
	}
	return nil
}
