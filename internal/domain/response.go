package domain

// Layout describes the interactive controls attached to a response.
// A nil Layout sends plain text.
type Layout interface {
	layout()
}

// ReplyButtons is a persistent reply keyboard, one slice per row
type ReplyButtons struct {
	Rows [][]string
}

// InlineButton is a button attached to a message
type InlineButton struct {
	Label   string
	Payload string
}

// InlineButtons renders one inline button per row
type InlineButtons struct {
	Buttons []InlineButton
}

// PhotoWithCaption sends an image instead of a text body
type PhotoWithCaption struct {
	ImageRef string
	Caption  string
}

// ContactRequest is a single reply button that shares the user's phone
type ContactRequest struct {
	Label string
}

// RemoveKeyboard hides any reply keyboard
type RemoveKeyboard struct{}

func (ReplyButtons) layout()     {}
func (InlineButtons) layout()    {}
func (PhotoWithCaption) layout() {}
func (ContactRequest) layout()   {}
func (RemoveKeyboard) layout()   {}

// Response is one outbound message
type Response struct {
	ChatID int64
	Text   string
	Layout Layout
}
