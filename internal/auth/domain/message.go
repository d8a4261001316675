package domain

// Message is an outbound notification. Kind names the template it was
// rendered from and is only used for logging and metrics.
type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}
