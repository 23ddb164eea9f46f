// Package conversation implements the per-user state machine that drives
// registration and menu navigation.
package conversation

import (
	"context"
	"errors"
	"fmt"

	"zhukbot/internal/domain"
	"zhukbot/internal/menu"
	"zhukbot/internal/state"

	"go.uber.org/zap"
)

// UserStore is the durable registration record
type UserStore interface {
	Get(ctx context.Context, userID int64) (*domain.User, error)
	UpsertConsentAndPhone(ctx context.Context, userID int64, phone string) error
	SetDisplayName(ctx context.Context, userID int64, name string) error
}

// ContentProvider serves menu leaves. Implementations never fail.
type ContentProvider interface {
	RandomFact() string
	CurrentWeather(ctx context.Context) string
	UpcomingEvents() string
	LeafDetail(leafID string) (imageRef, caption string, ok bool)
}

// Engine computes transitions and responses for inbound events
type Engine struct {
	catalog *menu.Catalog
	users   UserStore
	content ContentProvider
	states  state.Store
	locks   *keyedMutex
	logger  *zap.Logger
}

// NewEngine creates a conversation engine
func NewEngine(
	catalog *menu.Catalog,
	users UserStore,
	content ContentProvider,
	states state.Store,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		catalog: catalog,
		users:   users,
		content: content,
		states:  states,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// step is the outcome of one transition.
// When keep is set the stored state is left untouched.
type step struct {
	next domain.State
	keep bool
	out  []domain.Response
}

// Handle processes one event. Events of the same user are serialized.
// A non-nil error is a configuration error; state is not changed in that case.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) ([]domain.Response, error) {
	src := ev.From()

	unlock := e.locks.Lock(src.UserID)
	defer unlock()

	var (
		st  step
		err error
	)
	if _, ok := ev.(domain.CommandStart); ok {
		st, err = e.start(ctx, src)
	} else {
		st, err = e.dispatch(ctx, ev)
	}
	if err != nil {
		return nil, fmt.Errorf("handle %s from %d: %w", ev.Name(), src.UserID, err)
	}

	if !st.keep {
		e.states.Set(src.UserID, st.next)
		e.logger.Debug("State updated",
			zap.Int64("user_id", src.UserID),
			zap.String("event", ev.Name()),
			zap.Stringer("state", st.next),
		)
	}
	for i := range st.out {
		st.out[i].ChatID = src.ChatID
	}
	return st.out, nil
}

// State returns the stored state of a user
func (e *Engine) State(userID int64) (domain.State, bool) {
	return e.states.Get(userID)
}

func (e *Engine) dispatch(ctx context.Context, ev domain.Event) (step, error) {
	src := ev.From()

	current, ok := e.states.Get(src.UserID)
	if !ok {
		resolved, st, done := e.resolve(ctx, src)
		if done {
			return st, nil
		}
		current = resolved
	}

	switch current.Kind {
	case domain.KindAwaitingConsent:
		return e.onConsent(ev), nil
	case domain.KindAwaitingPhone:
		return e.onPhone(ctx, ev), nil
	case domain.KindAwaitingName:
		return e.onName(ctx, ev)
	case domain.KindIdle:
		return e.onMenu(ctx, e.catalog.Root().ID, ev)
	case domain.KindMenu:
		return e.onMenu(ctx, current.Node, ev)
	}
	return step{}, fmt.Errorf("unexpected state %v", current)
}

// resolve derives a state for a user the engine has not seen since start-up.
// When done is true the event is answered by st and must not be processed further.
func (e *Engine) resolve(ctx context.Context, src domain.Source) (resolved domain.State, st step, done bool) {
	user, err := e.users.Get(ctx, src.UserID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return domain.State{}, consentPrompt(), true
	case err != nil:
		return domain.State{}, e.storageFailure(src.UserID, "Failed to load user", err), true
	case user.Registered():
		return domain.Idle(), step{}, false
	default:
		return domain.AwaitingName(), step{}, false
	}
}

func (e *Engine) start(ctx context.Context, src domain.Source) (step, error) {
	e.logger.Info("User started bot", zap.Int64("user_id", src.UserID))

	user, err := e.users.Get(ctx, src.UserID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return consentPrompt(), nil
	case err != nil:
		return e.storageFailure(src.UserID, "Failed to load user", err), nil
	case !user.Registered():
		return step{
			next: domain.AwaitingName(),
			out:  []domain.Response{{Text: msgResumeName, Layout: domain.RemoveKeyboard{}}},
		}, nil
	}

	root, err := e.render(e.catalog.Root().ID)
	if err != nil {
		return step{}, err
	}
	root.Text = fmt.Sprintf(msgGreeting, user.DisplayName)
	return step{next: domain.Idle(), out: []domain.Response{root}}, nil
}

func consentPrompt() step {
	return step{
		next: domain.AwaitingConsent(),
		out: []domain.Response{{
			Text: privacyPolicy,
			Layout: domain.ReplyButtons{Rows: [][]string{
				{LabelConsentAccept, LabelConsentDecline},
			}},
		}},
	}
}

func (e *Engine) onConsent(ev domain.Event) step {
	msg, ok := ev.(domain.TextMessage)
	if !ok {
		if _, pressed := ev.(domain.ButtonPressed); pressed {
			return step{keep: true}
		}
		return step{keep: true, out: []domain.Response{{Text: msgConsentNeeded}}}
	}

	switch msg.Text {
	case LabelConsentAccept:
		return step{
			next: domain.AwaitingPhone(),
			out:  []domain.Response{{Text: msgAskPhone, Layout: domain.ContactRequest{Label: LabelSharePhone}}},
		}
	case LabelConsentDecline:
		// TODO: offer a reduced menu once the restricted mode promised by the policy text is defined
		return step{
			next: domain.AwaitingConsent(),
			out:  []domain.Response{{Text: msgDeclined, Layout: domain.RemoveKeyboard{}}},
		}
	default:
		return step{keep: true, out: []domain.Response{{Text: msgConsentNeeded}}}
	}
}

func (e *Engine) onPhone(ctx context.Context, ev domain.Event) step {
	switch ev := ev.(type) {
	case domain.ContactShared:
		err := e.users.UpsertConsentAndPhone(ctx, ev.UserID, ev.Phone)
		switch {
		case errors.Is(err, domain.ErrValidation):
			e.logger.Info("Rejected phone", zap.Int64("user_id", ev.UserID), zap.Error(err))
			return step{keep: true, out: []domain.Response{{Text: msgInvalidPhone}}}
		case err != nil:
			return e.storageFailure(ev.UserID, "Failed to save phone", err)
		}

		e.logger.Info("Phone saved", zap.Int64("user_id", ev.UserID))
		return step{
			next: domain.AwaitingName(),
			out:  []domain.Response{{Text: msgAskName, Layout: domain.RemoveKeyboard{}}},
		}
	case domain.TextMessage:
		return step{
			keep: true,
			out:  []domain.Response{{Text: msgPhoneNeeded, Layout: domain.ContactRequest{Label: LabelSharePhone}}},
		}
	}
	return step{keep: true}
}

func (e *Engine) onName(ctx context.Context, ev domain.Event) (step, error) {
	msg, ok := ev.(domain.TextMessage)
	if !ok {
		if _, pressed := ev.(domain.ButtonPressed); pressed {
			return step{keep: true}, nil
		}
		return step{keep: true, out: []domain.Response{{Text: msgAskName}}}, nil
	}

	err := e.users.SetDisplayName(ctx, msg.UserID, msg.Text)
	switch {
	case errors.Is(err, domain.ErrValidation):
		e.logger.Info("Rejected display name", zap.Int64("user_id", msg.UserID))
		return step{keep: true, out: []domain.Response{{Text: msgEmptyName}}}, nil
	case errors.Is(err, domain.ErrUserNotFound):
		// the phone record is gone; registration has to start over
		e.logger.Warn("Name submitted for unknown user", zap.Int64("user_id", msg.UserID))
		return consentPrompt(), nil
	case err != nil:
		return e.storageFailure(msg.UserID, "Failed to save display name", err), nil
	}

	name := domain.NormalizeName(msg.Text)
	e.logger.Info("User registered", zap.Int64("user_id", msg.UserID))

	root, err := e.render(e.catalog.Root().ID)
	if err != nil {
		return step{}, err
	}
	return step{
		next: domain.Idle(),
		out:  []domain.Response{{Text: fmt.Sprintf(msgRegistered, name)}, root},
	}, nil
}

func (e *Engine) onMenu(ctx context.Context, node domain.NodeID, ev domain.Event) (step, error) {
	back := e.catalog.Back()

	switch ev := ev.(type) {
	case domain.TextMessage:
		if ev.Text == back.Label {
			return e.goBack(node)
		}
		entry, ok, err := e.catalog.Match(node, ev.Text)
		if err != nil {
			return step{}, err
		}
		if !ok {
			return step{keep: true}, nil
		}
		if entry.IsSubmenu() {
			return e.open(entry.Child)
		}
		return step{keep: true, out: e.leaf(ctx, entry)}, nil

	case domain.ButtonPressed:
		if ev.Payload == back.Payload {
			return e.goBack(node)
		}
		entry, ok := e.catalog.Leaf(ev.Payload)
		if !ok {
			e.logger.Debug("Ignoring unknown button", zap.Int64("user_id", ev.UserID), zap.String("payload", ev.Payload))
			return step{keep: true}, nil
		}
		return step{keep: true, out: e.leaf(ctx, entry)}, nil
	}

	return step{keep: true}, nil
}

// goBack renders the direct parent; the root's parent is the root itself
func (e *Engine) goBack(node domain.NodeID) (step, error) {
	parent, err := e.catalog.ParentOf(node)
	if err != nil {
		return step{}, err
	}
	target := e.catalog.Root().ID
	if parent != nil {
		target = parent.ID
	}
	return e.open(target)
}

func (e *Engine) open(node domain.NodeID) (step, error) {
	resp, err := e.render(node)
	if err != nil {
		return step{}, err
	}
	next := domain.AtMenu(node)
	if node == e.catalog.Root().ID {
		next = domain.Idle()
	}
	return step{next: next, out: []domain.Response{resp}}, nil
}

func (e *Engine) render(node domain.NodeID) (domain.Response, error) {
	text, layout, err := e.catalog.Render(node)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Text: text, Layout: layout}, nil
}

func (e *Engine) leaf(ctx context.Context, entry menu.Entry) []domain.Response {
	switch entry.Action {
	case menu.ActionText:
		return []domain.Response{{Text: entry.Text}}
	case menu.ActionFact:
		return []domain.Response{{Text: e.content.RandomFact()}}
	case menu.ActionWeather:
		return []domain.Response{{Text: e.content.CurrentWeather(ctx)}}
	case menu.ActionEvents:
		return []domain.Response{{Text: e.content.UpcomingEvents()}}
	case menu.ActionDetail:
		image, caption, ok := e.content.LeafDetail(entry.Payload)
		if !ok {
			e.logger.Warn("No content for leaf", zap.String("payload", entry.Payload))
			return nil
		}
		return []domain.Response{{Layout: domain.PhotoWithCaption{ImageRef: image, Caption: caption}}}
	}
	return nil
}

func (e *Engine) storageFailure(userID int64, msg string, err error) step {
	e.logger.Error(msg, zap.Int64("user_id", userID), zap.Error(err))
	return step{keep: true, out: []domain.Response{{Text: msgTryAgain}}}
}
