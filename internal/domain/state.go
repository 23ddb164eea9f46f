package domain

import "fmt"

// NodeID identifies a node of the menu tree
type NodeID string

// StateKind discriminates the conversation state variants
type StateKind int

const (
	KindAwaitingConsent StateKind = iota + 1
	KindAwaitingPhone
	KindAwaitingName
	// KindIdle is a registered user with no open submenu; equivalent to the root menu
	KindIdle
	KindMenu
)

// State is the user's current position in the conversation.
// Node is only meaningful for KindMenu.
type State struct {
	Kind StateKind
	Node NodeID
}

func AwaitingConsent() State { return State{Kind: KindAwaitingConsent} }
func AwaitingPhone() State   { return State{Kind: KindAwaitingPhone} }
func AwaitingName() State    { return State{Kind: KindAwaitingName} }
func Idle() State            { return State{Kind: KindIdle} }

// AtMenu returns the state for an open menu node
func AtMenu(node NodeID) State {
	return State{Kind: KindMenu, Node: node}
}

// Registering reports whether the state belongs to the registration flow
func (s State) Registering() bool {
	switch s.Kind {
	case KindAwaitingConsent, KindAwaitingPhone, KindAwaitingName:
		return true
	}
	return false
}

func (s State) String() string {
	switch s.Kind {
	case KindAwaitingConsent:
		return "awaiting_consent"
	case KindAwaitingPhone:
		return "awaiting_phone"
	case KindAwaitingName:
		return "awaiting_name"
	case KindIdle:
		return "idle"
	case KindMenu:
		return fmt.Sprintf("menu(%s)", s.Node)
	}
	return "unknown"
}
