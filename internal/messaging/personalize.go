package messaging

import "strings"

// Placeholder tokens substituted per recipient.
const (
	TokenName  = "[[name]]"
	TokenPhone = "[[phone_number]]"
)

// Contact is one message recipient.
type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// HasPlaceholders reports whether the message body contains any
// per-recipient token. Messages with tokens go through the personalized
// endpoint (one message per destination); plain messages go through the
// general endpoint.
func HasPlaceholders(message string) bool {
	return strings.Contains(message, TokenName) || strings.Contains(message, TokenPhone)
}

// Render substitutes the recipient's values into the message body.
func Render(message string, c Contact) string {
	out := strings.ReplaceAll(message, TokenName, c.Name)
	return strings.ReplaceAll(out, TokenPhone, c.PhoneNumber)
}
