package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studio-assistant/internal/domain"
	"studio-assistant/internal/tenant"
)

type fakeStore struct {
	fields  map[string]string
	history map[string][]string
	failGet string
}

func newFakeStore() *fakeStore {
	return &fakeStore{fields: map[string]string{}, history: map[string][]string{}}
}

func (f *fakeStore) key(userID, field string) string { return userID + "|" + field }

func (f *fakeStore) Get(_ context.Context, userID, field string) (string, error) {
	if field == f.failGet {
		return "", errors.New("store unavailable")
	}
	return f.fields[f.key(userID, field)], nil
}

func (f *fakeStore) Set(_ context.Context, userID, field, value string) error {
	f.fields[f.key(userID, field)] = value
	return nil
}

func (f *fakeStore) SetTTL(ctx context.Context, userID, field, value string, _ time.Duration) error {
	return f.Set(ctx, userID, field, value)
}

func (f *fakeStore) Delete(_ context.Context, userID, field string) error {
	delete(f.fields, f.key(userID, field))
	return nil
}

func (f *fakeStore) Consume(ctx context.Context, userID, field string) (string, error) {
	value, err := f.Get(ctx, userID, field)
	if err != nil {
		return "", err
	}
	_ = f.Delete(ctx, userID, field)
	return value, nil
}

func (f *fakeStore) AppendHistory(_ context.Context, userID, message string, limit int) error {
	h := append(f.history[userID], message)
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	f.history[userID] = h
	return nil
}

func (f *fakeStore) History(_ context.Context, userID string, limit int) ([]string, error) {
	h := f.history[userID]
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	return append([]string(nil), h...), nil
}

type fakeBusiness struct {
	profile domain.BusinessProfile
	err     error
}

func (f *fakeBusiness) Profile(context.Context, string) (domain.BusinessProfile, error) {
	return f.profile, f.err
}

type fakePartner struct {
	profile domain.PartnerProfile
	err     error
}

func (f *fakePartner) Fetch(context.Context) (domain.PartnerProfile, error) {
	return f.profile, f.err
}

type fakeChat struct {
	reply string
	err   error
	reqs  []domain.ChatRequest
}

func (f *fakeChat) Chat(_ context.Context, req domain.ChatRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeDetector struct {
	lang string
	ok   bool
}

func (f *fakeDetector) Detect(string) (string, bool) { return f.lang, f.ok }

type env struct {
	store    *fakeStore
	business *fakeBusiness
	partner  *fakePartner
	chat     *fakeChat
	detector *fakeDetector
	tenant   *tenant.Profile
	svc      *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:    newFakeStore(),
		business: &fakeBusiness{},
		partner:  &fakePartner{},
		chat:     &fakeChat{reply: "Alles klar!"},
		detector: &fakeDetector{},
		tenant:   tenant.Default(),
	}
	svc, err := New(e.store, e.business, e.partner, e.chat, e.detector, e.tenant)
	require.NoError(t, err)
	// Deterministic randomness: never inject the name, always pick the
	// first list entry.
	svc.randFloat = func() float64 { return 1 }
	svc.randIntN = func(int) int { return 0 }
	e.svc = svc
	return e
}

func (e *env) knownUser(userID, name string) {
	e.store.fields[userID+"|"+domain.FieldName] = name
}

func (e *env) resolve(t *testing.T, userID, message string) string {
	t.Helper()
	out, err := e.svc.Resolve(context.Background(), Input{UserID: userID, Message: message})
	require.NoError(t, err)
	return out.Reply
}

func TestNew_Validates(t *testing.T) {
	store := newFakeStore()
	business := &fakeBusiness{}
	partner := &fakePartner{}
	chat := &fakeChat{}
	detector := &fakeDetector{}
	profile := tenant.Default()

	_, err := New(nil, business, partner, chat, detector, profile)
	require.Error(t, err)
	_, err = New(store, nil, partner, chat, detector, profile)
	require.Error(t, err)
	_, err = New(store, business, nil, chat, detector, profile)
	require.Error(t, err)
	_, err = New(store, business, partner, nil, detector, profile)
	require.Error(t, err)
	_, err = New(store, business, partner, chat, nil, profile)
	require.Error(t, err)
	_, err = New(store, business, partner, chat, detector, nil)
	require.Error(t, err)
}

func TestResolve_EmptyUserID(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Resolve(context.Background(), Input{UserID: "  ", Message: "Hi"})

	var resolverErr *Error
	require.ErrorAs(t, err, &resolverErr)
	require.Equal(t, ErrorInvalidInput, resolverErr.Code)
}

func TestResolve_EmptyMessageReturnsGreeting(t *testing.T) {
	e := newEnv(t)
	reply := e.resolve(t, "u1", "   ")
	require.Equal(t, e.tenant.FallbackGreetings["de"][0], reply)
	require.Empty(t, e.chat.reqs)
}

func TestResolve_FirstContactAsksForName(t *testing.T) {
	e := newEnv(t)
	reply := e.resolve(t, "u1", "Wann habt ihr geöffnet?")

	require.Equal(t, e.tenant.NamePrompt["de"], reply)
	require.Equal(t, "Wann habt ihr geöffnet?", e.store.fields["u1|"+domain.FieldPending])
	require.Equal(t, "1", e.store.fields["u1|"+domain.FieldAskedName])
	require.Empty(t, e.chat.reqs)
}

func TestResolve_NameReplyResumesPendingWithIntro(t *testing.T) {
	e := newEnv(t)
	e.resolve(t, "u1", "Wann habt ihr geöffnet?")

	reply := e.resolve(t, "u1", "Anna Müller")

	intro := fmt.Sprintf(e.tenant.Intro["de"], "Anna")
	require.Equal(t, intro+"Alles klar!", reply)
	require.Equal(t, "Anna", e.store.fields["u1|"+domain.FieldName])
	require.Equal(t, "1", e.store.fields["u1|"+domain.FieldSkipIntro])
	require.Empty(t, e.store.fields["u1|"+domain.FieldPending])

	// The parked question, not the name reply, went to the backend.
	require.Len(t, e.chat.reqs, 1)
	msgs := e.chat.reqs[0].Messages
	require.Equal(t, "Wann habt ihr geöffnet?", msgs[len(msgs)-1].Content)
}

func TestResolve_UnparseableNameFallsBackToHonorific(t *testing.T) {
	e := newEnv(t)
	e.resolve(t, "u1", "Hi")
	e.resolve(t, "u1", "123")

	require.Equal(t, e.tenant.Honorific["de"], e.store.fields["u1|"+domain.FieldName])
}

func TestResolve_StoreErrorIsInternal(t *testing.T) {
	e := newEnv(t)
	e.store.failGet = domain.FieldLanguage

	_, err := e.svc.Resolve(context.Background(), Input{UserID: "u1", Message: "Hi"})

	var resolverErr *Error
	require.ErrorAs(t, err, &resolverErr)
	require.Equal(t, ErrorInternal, resolverErr.Code)
}

func TestFallback_HistoryIsRecordedAndBounded(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")

	for i := 0; i < historyLimit+2; i++ {
		e.resolve(t, "u1", fmt.Sprintf("Nachricht %d bitte beantworten", i))
	}

	h, err := e.store.History(context.Background(), "u1", historyLimit)
	require.NoError(t, err)
	require.Len(t, h, historyLimit)
	require.Equal(t, fmt.Sprintf("Nachricht %d bitte beantworten", historyLimit+1), h[len(h)-1])

	// Each prompt carries the prior history plus the current message only.
	last := e.chat.reqs[len(e.chat.reqs)-1].Messages
	require.Len(t, last, historyLimit+1)
}

func TestFallback_BackendErrorReturnsApology(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.chat.err = errors.New("upstream down")

	reply := e.resolve(t, "u1", "Erzähl mir was über eure Angebote")
	require.Equal(t, e.tenant.BackendApology["de"], reply)
}

func TestSessionLanguage_PrefersStoredOverDeclared(t *testing.T) {
	e := newEnv(t)
	e.knownUser("u1", "Anna")
	e.store.fields["u1|"+domain.FieldLanguage] = "en"

	out, err := e.svc.Resolve(context.Background(), Input{UserID: "u1", Message: "tell me about waxing", Language: "de"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Reply)
	require.Contains(t, e.chat.reqs[0].System, "Always respond in English")
}

func TestExtractName(t *testing.T) {
	require.Equal(t, "Anna", extractName("Anna Müller", "Lieber Gast"))
	require.Equal(t, "Anna", extractName("anna", "Lieber Gast"))
	require.Equal(t, "Lieber Gast", extractName("123", "Lieber Gast"))
	require.Equal(t, "Lieber Gast", extractName("x", "Lieber Gast"))
	require.Equal(t, "Lieber Gast", extractName("ein ganz furchtbar langer satz", "Lieber Gast"))
}
