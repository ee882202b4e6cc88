package ghostreader

import "fmt"

// ConfigurationError indicates the backend was set up without a required
// collaborator or with an invalid setting.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// MissingTranslationError indicates that no value could be produced for a key.
type MissingTranslationError struct {
	Locale string
	Key    string
	Cause  error
}

func (e *MissingTranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation missing: %s.%s: %v", e.Locale, e.Key, e.Cause)
	}
	return fmt.Sprintf("translation missing: %s.%s", e.Locale, e.Key)
}

func (e *MissingTranslationError) Unwrap() error {
	return e.Cause
}

// UnsupportedResultError indicates the fallback returned a structured value
// where a single translation was expected.
type UnsupportedResultError struct {
	Locale string
	Key    string
	Type   string // Go type of the rejected value
}

func (e *UnsupportedResultError) Error() string {
	return fmt.Sprintf("unsupported fallback result for %s.%s: %s", e.Locale, e.Key, e.Type)
}

// ClientError indicates a remote service failure (transport error, bad status, etc.).
type ClientError struct {
	Message    string
	Cause      error
	StatusCode int  // Status returned by the service, 0 if none
	Retryable  bool // Whether the operation can be retried
}

func (e *ClientError) Error() string {
	msg := "client error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a snapshot store failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}
