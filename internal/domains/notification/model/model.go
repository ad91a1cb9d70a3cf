package model

const (
	TypeWelcome       = "welcome"
	TypePasswordReset = "password_reset"
)

// Message is published for the external mailer. URL is the link the email points to:
// the account page for a welcome, the reset form for a password reset.
type Message struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FirstName is the greeting used by the mailer templates.
func (m Message) FirstName() string {
	for i, r := range m.Name {
		if r == ' ' {
			return m.Name[:i]
		}
	}

	return m.Name
}
