package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"zhukbot/internal/domain"
	"zhukbot/internal/menu"
	"zhukbot/internal/service"
	"zhukbot/internal/state"
	"zhukbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	userID = int64(42)
	chatID = int64(4242)
)

var src = domain.Source{UserID: userID, ChatID: chatID}

type stubContent struct {
	mu    sync.Mutex
	calls map[string]int
}

func (s *stubContent) hit(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

func (s *stubContent) RandomFact() string {
	s.hit("fact")
	return "fact"
}

func (s *stubContent) CurrentWeather(context.Context) string {
	s.hit("weather")
	return service.WeatherFallback
}

func (s *stubContent) UpcomingEvents() string {
	s.hit("events")
	return "events"
}

func (s *stubContent) LeafDetail(leafID string) (string, string, bool) {
	s.hit("detail")
	if leafID == "coffee_1" || leafID == "health" {
		return "https://img/" + leafID, "caption " + leafID, true
	}
	return "", "", false
}

type fixture struct {
	engine  *Engine
	repo    *testutil.FakeUserRepository
	states  *state.MemoryStore
	content *stubContent
	catalog *menu.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := menu.Default()
	require.NoError(t, err)

	f := &fixture{
		repo:    testutil.NewFakeUserRepository(),
		states:  state.NewMemoryStore(),
		content: &stubContent{},
		catalog: catalog,
	}
	f.engine = NewEngine(catalog, service.NewUserService(f.repo), f.content, f.states, testutil.NewTestLogger())
	return f
}

// registered puts a fully registered user into the store with no conversation state
func (f *fixture) registered(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repo.UpsertPhone(ctx, userID, "+79991234567"))
	require.NoError(t, f.repo.SetDisplayName(ctx, userID, name))
}

func (f *fixture) send(t *testing.T, ev domain.Event) []domain.Response {
	t.Helper()
	out, err := f.engine.Handle(context.Background(), ev)
	require.NoError(t, err)
	return out
}

func (f *fixture) text(t *testing.T, text string) []domain.Response {
	return f.send(t, domain.TextMessage{Source: src, Text: text})
}

func (f *fixture) press(t *testing.T, payload string) []domain.Response {
	return f.send(t, domain.ButtonPressed{Source: src, Payload: payload})
}

func (f *fixture) state(t *testing.T) domain.State {
	t.Helper()
	st, ok := f.engine.State(userID)
	require.True(t, ok, "no state stored")
	return st
}

func TestEngine_RegistrationScenario(t *testing.T) {
	f := newFixture(t)

	out := f.send(t, domain.CommandStart{Source: src})
	require.Len(t, out, 1)
	assert.Equal(t, chatID, out[0].ChatID)
	assert.Contains(t, out[0].Text, "Политика конфиденциальности")
	assert.Equal(t, domain.ReplyButtons{Rows: [][]string{{LabelConsentAccept, LabelConsentDecline}}}, out[0].Layout)
	assert.Equal(t, domain.AwaitingConsent(), f.state(t))

	out = f.text(t, LabelConsentAccept)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ContactRequest{Label: LabelSharePhone}, out[0].Layout)
	assert.Equal(t, domain.AwaitingPhone(), f.state(t))

	out = f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})
	require.Len(t, out, 1)
	assert.Equal(t, msgAskName, out[0].Text)
	assert.Equal(t, domain.AwaitingName(), f.state(t))

	out = f.text(t, "Anna")
	require.Len(t, out, 2)
	assert.Equal(t, "Спасибо за регистрацию, Anna!", out[0].Text)
	rootText, rootLayout, err := f.catalog.Render("main")
	require.NoError(t, err)
	assert.Equal(t, domain.Response{ChatID: chatID, Text: rootText, Layout: rootLayout}, out[1])
	assert.Equal(t, domain.Idle(), f.state(t))

	user, err := f.repo.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "+79991234567", user.Phone)
	assert.Equal(t, "Anna", user.DisplayName)
}

func TestEngine_FirstEventPromptsConsentOnce(t *testing.T) {
	f := newFixture(t)

	out := f.text(t, "hello")
	require.Len(t, out, 1)
	assert.Equal(t, privacyPolicy, out[0].Text)
	assert.Equal(t, domain.AwaitingConsent(), f.state(t))

	for _, text := range []string{"hello", "Форум 🏠", "yes"} {
		out = f.text(t, text)
		require.Len(t, out, 1)
		assert.Equal(t, msgConsentNeeded, out[0].Text)
		assert.Equal(t, domain.AwaitingConsent(), f.state(t))
	}

	out = f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})
	require.Len(t, out, 1)
	assert.Equal(t, msgConsentNeeded, out[0].Text)

	out = f.press(t, "coffee_1")
	assert.Empty(t, out)
	assert.Equal(t, domain.AwaitingConsent(), f.state(t))
}

func TestEngine_ConsentDeclinedStays(t *testing.T) {
	f := newFixture(t)
	f.send(t, domain.CommandStart{Source: src})

	out := f.text(t, LabelConsentDecline)
	require.Len(t, out, 1)
	assert.Equal(t, msgDeclined, out[0].Text)
	assert.Equal(t, domain.RemoveKeyboard{}, out[0].Layout)
	assert.Equal(t, domain.AwaitingConsent(), f.state(t))

	out = f.text(t, LabelConsentAccept)
	require.Len(t, out, 1)
	assert.Equal(t, domain.AwaitingPhone(), f.state(t))
}

func TestEngine_InvalidPhone(t *testing.T) {
	f := newFixture(t)
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, LabelConsentAccept)

	for _, phone := range []string{"12345", "+1234567890123456"} {
		out := f.send(t, domain.ContactShared{Source: src, Phone: phone})
		require.Len(t, out, 1)
		assert.Equal(t, msgInvalidPhone, out[0].Text)
		assert.Equal(t, domain.AwaitingPhone(), f.state(t))
	}

	out := f.text(t, "+79991234567")
	require.Len(t, out, 1)
	assert.Equal(t, msgPhoneNeeded, out[0].Text)
	assert.Equal(t, domain.AwaitingPhone(), f.state(t))

	_, err := f.repo.GetUser(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEngine_EmptyName(t *testing.T) {
	f := newFixture(t)
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, LabelConsentAccept)
	f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})

	out := f.text(t, "   ")
	require.Len(t, out, 1)
	assert.Equal(t, msgEmptyName, out[0].Text)
	assert.Equal(t, domain.AwaitingName(), f.state(t))
}

func TestEngine_StartAfterPhoneSkipsConsent(t *testing.T) {
	f := newFixture(t)
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, LabelConsentAccept)
	f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})

	user, err := f.repo.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "+79991234567", user.Phone)

	out := f.send(t, domain.CommandStart{Source: src})
	require.Len(t, out, 1)
	assert.Equal(t, msgResumeName, out[0].Text)
	assert.Equal(t, domain.AwaitingName(), f.state(t))

	f.text(t, "Anna")
	out = f.send(t, domain.CommandStart{Source: src})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "Привет, Anna!")
	assert.NotContains(t, out[0].Text, "Политика")
	assert.Equal(t, domain.Idle(), f.state(t))
}

func TestEngine_StartFromAnyState(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.states.Set(userID, domain.AtMenu("forum_zones"))

	out := f.send(t, domain.CommandStart{Source: src})
	require.Len(t, out, 1)
	_, rootLayout, _ := f.catalog.Render("main")
	assert.Equal(t, rootLayout, out[0].Layout)
	assert.Equal(t, domain.Idle(), f.state(t))
}

func TestEngine_RestartResolvesRegisteredUser(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")

	out := f.text(t, "Форум 🏠")
	require.Len(t, out, 1)
	assert.Equal(t, "Выберите действие на Форуме:", out[0].Text)
	assert.Equal(t, domain.AtMenu("forum"), f.state(t))
}

func TestEngine_BackReturnsSameRootRender(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	root := f.send(t, domain.CommandStart{Source: src})
	require.Len(t, root, 1)

	for _, label := range []string{"Форум 🏠", "Навигация по городу 🗺️"} {
		t.Run(label, func(t *testing.T) {
			f.text(t, label)
			require.Equal(t, domain.KindMenu, f.state(t).Kind)

			out := f.text(t, "Назад ◀️")
			require.Len(t, out, 1)
			assert.Equal(t, root[0].Layout, out[0].Layout)
			assert.Equal(t, domain.Idle(), f.state(t))
		})
	}
}

func TestEngine_BackWalksDirectParent(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})

	f.text(t, "Форум 🏠")
	forum := f.text(t, "Зоны Форума 🏞️")
	require.Len(t, forum, 1)
	assert.Equal(t, domain.AtMenu("forum_zones"), f.state(t))

	// inline back from the zones menu
	out := f.press(t, "back")
	require.Len(t, out, 1)
	assert.Equal(t, "Выберите действие на Форуме:", out[0].Text)
	assert.Equal(t, domain.AtMenu("forum"), f.state(t))

	f.text(t, "Назад ◀️")
	assert.Equal(t, domain.Idle(), f.state(t))

	// back at the root re-renders the root
	out = f.text(t, "Назад ◀️")
	require.Len(t, out, 1)
	assert.Equal(t, "Выберите действие:", out[0].Text)
	assert.Equal(t, domain.Idle(), f.state(t))
}

func TestEngine_LeafKeepsState(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, "Навигация по городу 🗺️")
	f.text(t, "Где поесть 🍽️")
	require.Equal(t, domain.AtMenu("dining"), f.state(t))

	out := f.press(t, "coffee_1")
	require.Len(t, out, 1)
	assert.Equal(t, domain.PhotoWithCaption{ImageRef: "https://img/coffee_1", Caption: "caption coffee_1"}, out[0].Layout)
	assert.Equal(t, domain.AtMenu("dining"), f.state(t))
}

func TestEngine_RootLeaves(t *testing.T) {
	tests := []struct {
		label    string
		expected string
		call     string
	}{
		{label: "Интересный факт 🗒️", expected: "fact", call: "fact"},
		{label: "Текущая погода 🌤️", expected: service.WeatherFallback, call: "weather"},
		{label: "События 🎉", expected: "events", call: "events"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f := newFixture(t)
			f.registered(t, "Anna")
			f.send(t, domain.CommandStart{Source: src})

			out := f.text(t, tt.label)
			require.Len(t, out, 1)
			assert.Equal(t, tt.expected, out[0].Text)
			assert.Nil(t, out[0].Layout)
			assert.Equal(t, 1, f.content.calls[tt.call])
			assert.Equal(t, domain.Idle(), f.state(t))
		})
	}
}

func TestEngine_StaticTextLeaf(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, "Навигация по городу 🗺️")

	out := f.text(t, "Рядом со мной 📍")
	require.Len(t, out, 1)
	assert.Equal(t, "Мы всегда рядом с вами :)", out[0].Text)
	assert.Equal(t, domain.AtMenu("navigation"), f.state(t))
}

func TestEngine_LabelsOnlyMatchActiveNode(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})

	// a navigation label typed at the root is ignored
	out := f.text(t, "Где поесть 🍽️")
	assert.Empty(t, out)
	assert.Equal(t, domain.Idle(), f.state(t))

	f.text(t, "Форум 🏠")
	out = f.text(t, "Куда сходить 🚶‍♂️")
	assert.Empty(t, out)
	assert.Equal(t, domain.AtMenu("forum"), f.state(t))

	out = f.text(t, "random chatter")
	assert.Empty(t, out)
	assert.Equal(t, domain.AtMenu("forum"), f.state(t))
}

func TestEngine_UnknownButtonIgnored(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, "Форум 🏠")

	out := f.press(t, "nonexistent")
	assert.Empty(t, out)
	assert.Equal(t, domain.AtMenu("forum"), f.state(t))
}

func TestEngine_StorageFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.send(t, domain.CommandStart{Source: src})
	f.text(t, LabelConsentAccept)

	f.repo.SetErr(errors.New("connection refused"))
	out := f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})
	require.Len(t, out, 1)
	assert.Equal(t, msgTryAgain, out[0].Text)
	assert.Equal(t, domain.AwaitingPhone(), f.state(t))

	f.repo.SetErr(nil)
	out = f.send(t, domain.ContactShared{Source: src, Phone: "+79991234567"})
	require.Len(t, out, 1)
	assert.Equal(t, domain.AwaitingName(), f.state(t))

	f.repo.SetErr(errors.New("connection refused"))
	out = f.text(t, "Anna")
	require.Len(t, out, 1)
	assert.Equal(t, msgTryAgain, out[0].Text)
	assert.Equal(t, domain.AwaitingName(), f.state(t))
}

func TestEngine_StorageFailureOnStart(t *testing.T) {
	f := newFixture(t)
	f.repo.SetErr(errors.New("connection refused"))

	out := f.send(t, domain.CommandStart{Source: src})
	require.Len(t, out, 1)
	assert.Equal(t, msgTryAgain, out[0].Text)

	_, ok := f.engine.State(userID)
	assert.False(t, ok)
}

func TestEngine_UnknownNodeIsConfigurationError(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.states.Set(userID, domain.AtMenu("ghost"))

	out, err := f.engine.Handle(context.Background(), domain.TextMessage{Source: src, Text: "Форум 🏠"})
	assert.ErrorIs(t, err, menu.ErrUnknownNode)
	assert.Nil(t, out)
	assert.Equal(t, domain.AtMenu("ghost"), f.state(t))

	// other users are unaffected
	other := domain.Source{UserID: userID + 1, ChatID: chatID + 1}
	out, err = f.engine.Handle(context.Background(), domain.CommandStart{Source: other})
	assert.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestEngine_ConcurrentSameUser(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "Anna")
	f.send(t, domain.CommandStart{Source: src})

	// double taps on a submenu always land in that submenu
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Handle(context.Background(), domain.TextMessage{Source: src, Text: "Форум 🏠"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.AtMenu("forum"), f.state(t))
	assert.Equal(t, 0, f.engine.locks.size())
}

func TestEngine_ConcurrentUsers(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 1; i <= 30; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s := domain.Source{UserID: id, ChatID: id}
			ctx := context.Background()
			for _, ev := range []domain.Event{
				domain.CommandStart{Source: s},
				domain.TextMessage{Source: s, Text: LabelConsentAccept},
				domain.ContactShared{Source: s, Phone: "+79991234567"},
				domain.TextMessage{Source: s, Text: "User"},
			} {
				_, err := f.engine.Handle(ctx, ev)
				assert.NoError(t, err)
			}
		}(int64(i))
	}
	wg.Wait()

	for i := int64(1); i <= 30; i++ {
		st, ok := f.engine.State(i)
		require.True(t, ok)
		assert.Equal(t, domain.Idle(), st)
	}
	assert.Equal(t, 0, f.engine.locks.size())
}
