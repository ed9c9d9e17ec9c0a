package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds entry and party identifiers.
const maxIDLength = 128

// ValidateID validates an entry or party identifier.
// Identifiers end up in Redis keys, NATS payloads and URL paths, so the rules
// are conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidConfig, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "%s id %q contains whitespace or control characters", kind, id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidConfig, "%s id %q cannot contain path separators", kind, id)
	}

	return nil
}

// natsSubjectRegex matches NATS subjects, allowing the * and > wildcards.
var natsSubjectRegex = regexp.MustCompile(`^([A-Za-z0-9_\-]+|\*)(\.([A-Za-z0-9_\-]+|\*))*(\.>)?$|^>$`)

// ValidateSubject validates a NATS subject used for result ingestion.
func ValidateSubject(subject string) error {
	if subject == "" {
		return New(ErrCodeInvalidInput, "subject cannot be empty")
	}
	if !natsSubjectRegex.MatchString(subject) {
		return New(ErrCodeInvalidInput, "invalid subject: %q", subject)
	}
	return nil
}

// ValidateURL validates a connection URL against a set of allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
