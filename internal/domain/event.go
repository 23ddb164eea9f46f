package domain

// Source identifies who sent an inbound event and where to reply
type Source struct {
	UserID int64
	ChatID int64
}

// Event is an inbound update classified by the transport
type Event interface {
	From() Source
	Name() string
}

// TextMessage is free text or a reply-keyboard label
type TextMessage struct {
	Source
	Text string
}

// ContactShared carries the phone number of a shared contact
type ContactShared struct {
	Source
	Phone string
}

// ButtonPressed is an inline button press with its payload
type ButtonPressed struct {
	Source
	Payload string
}

// CommandStart is the /start (or /help) command
type CommandStart struct {
	Source
}

func (e TextMessage) From() Source   { return e.Source }
func (e ContactShared) From() Source { return e.Source }
func (e ButtonPressed) From() Source { return e.Source }
func (e CommandStart) From() Source  { return e.Source }

func (TextMessage) Name() string   { return "text" }
func (ContactShared) Name() string { return "contact" }
func (ButtonPressed) Name() string { return "button" }
func (CommandStart) Name() string  { return "start" }
