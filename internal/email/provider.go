package email

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Provider sends email messages. The queue worker is its only caller.
type Provider interface {
	Send(msg *Message) error
}
