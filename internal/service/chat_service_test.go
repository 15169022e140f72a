package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"run-coach-be/internal/dto"
	"run-coach-be/internal/entity"
	"run-coach-be/internal/pkg/logger"
	"run-coach-be/internal/repository/contract"
	"run-coach-be/internal/repository/memory"
	"run-coach-be/internal/repository/specification"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/pkg/coach/onboarding"
	"run-coach-be/pkg/coach/presentation"
	"run-coach-be/pkg/coach/profile"
	"run-coach-be/pkg/coach/prompt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeProfileRepo struct {
	mu             sync.Mutex
	profiles       map[uuid.UUID]*entity.RunnerProfile
	summaryWrites  []string
	summaryWriteBy []uuid.UUID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*entity.RunnerProfile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, p *entity.RunnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.UserId] = &cp
	return nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, p *entity.RunnerProfile) error {
	return r.Create(ctx, p)
}

func (r *fakeProfileRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeProfileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RunnerProfile, error) {
	return nil, nil
}

func (r *fakeProfileRepo) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.RunnerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userId]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateSummary(ctx context.Context, userId uuid.UUID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaryWrites = append(r.summaryWrites, summary)
	r.summaryWriteBy = append(r.summaryWriteBy, userId)
	if p, ok := r.profiles[userId]; ok {
		p.ConversationSummary = summary
	}
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.ChatMessage
	failNext int
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext > 0 {
		r.failNext--
		return errors.New("store down")
	}
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.ChatMessage(nil), r.messages...), nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

func (r *fakeMessageRepo) FindRecentByUserId(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []*entity.ChatMessage
	for _, m := range r.messages {
		if m.UserId == userId {
			mine = append(mine, m)
		}
	}
	if len(mine) > limit {
		mine = mine[len(mine)-limit:]
	}
	return mine, nil
}

func (r *fakeMessageRepo) bySender(sender entity.MessageSender) []*entity.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if m.Sender == sender {
			out = append(out, m)
		}
	}
	return out
}

type fakeMetaRepo struct {
	mu    sync.Mutex
	metas map[uuid.UUID]*entity.ConversationMeta
}

func newFakeMetaRepo() *fakeMetaRepo {
	return &fakeMetaRepo{metas: make(map[uuid.UUID]*entity.ConversationMeta)}
}

func (r *fakeMetaRepo) Upsert(ctx context.Context, meta *entity.ConversationMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *meta
	r.metas[meta.UserId] = &cp
	return nil
}

func (r *fakeMetaRepo) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.ConversationMeta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metas[userId], nil
}

// fakeUserRepo serves the account lookup used for profile name seeding.
// The embedded interface covers the rest of the contract; anything else
// called in a test panics, which is what we want.
type fakeUserRepo struct {
	contract.UserRepository
	user *entity.User
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return r.user, nil
}

type fakeUow struct {
	profiles *fakeProfileRepo
	messages *fakeMessageRepo
	metas    *fakeMetaRepo
	users    *fakeUserRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }

func (u *fakeUow) Commit() error { return nil }

func (u *fakeUow) Rollback() error { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository { return u.users }

func (u *fakeUow) RunnerProfileRepository() contract.RunnerProfileRepository {
	return u.profiles
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }

func (u *fakeUow) ConversationMetaRepository() contract.ConversationMetaRepository {
	return u.metas
}

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeGateway struct {
	mu       sync.Mutex
	askCalls int
	answers  []*prompt.Answer
	lastAsk  prompt.AskContext
	askErr   error
}

func (g *fakeGateway) Ask(ctx context.Context, askCtx prompt.AskContext) (*prompt.Answer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.askCalls++
	g.lastAsk = askCtx
	if g.askErr != nil {
		return nil, g.askErr
	}
	if len(g.answers) == 0 {
		return &prompt.Answer{Reply: "Sounds good!", ProfileUpdate: profile.Patch{}}, nil
	}
	a := g.answers[0]
	if len(g.answers) > 1 {
		g.answers = g.answers[1:]
	}
	return a, nil
}

func (g *fakeGateway) Summarize(ctx context.Context, summaryPrompt string) (string, error) {
	return "summary", nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.askCalls
}

type fakeJobQueue struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (q *fakeJobQueue) Publish(ctx context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return nil
}

// fakePort records every render instruction so tests can assert on the
// presentation stream. Reveal goroutines may still be writing after the
// turn returns, hence the mutex.
type portEvent struct {
	kind string
	text string
}

type fakePort struct {
	mu     sync.Mutex
	events []portEvent
}

func (p *fakePort) record(kind, text string) {
	p.mu.Lock()
	p.events = append(p.events, portEvent{kind: kind, text: text})
	p.mu.Unlock()
}

func (p *fakePort) ShowUserBubble(_ uuid.UUID, text string) { p.record("user_bubble", text) }

func (p *fakePort) ShowBotBubble(_ uuid.UUID, text string) { p.record("bot_bubble", text) }

func (p *fakePort) ShowThinking(uuid.UUID) presentation.Handle {
	p.record("thinking", "")
	return fakeThinking{p}
}

func (p *fakePort) ShowChoices(_ uuid.UUID, choices []prompt.QuickReply) {
	labels := make([]string, 0, len(choices))
	for _, c := range choices {
		labels = append(labels, c.Label)
	}
	p.record("choices", strings.Join(labels, ","))
}

func (p *fakePort) ShowCard(_ uuid.UUID, card prompt.VisualCard) { p.record("card", card.Title) }

func (p *fakePort) SetExpandedMode(_ uuid.UUID, expanded bool) {
	p.record("expanded", fmt.Sprintf("%v", expanded))
}

func (p *fakePort) Typing(_ uuid.UUID, fragment string) { p.record("typing", fragment) }

type fakeThinking struct{ p *fakePort }

func (h fakeThinking) Remove() { h.p.record("thinking_done", "") }

func (p *fakePort) byKind(kind string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.kind == kind {
			out = append(out, e.text)
		}
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}

func (nopLogger) Info(string, string, map[string]interface{}) {}

func (nopLogger) Warn(string, string, map[string]interface{}) {}

func (nopLogger) Error(string, string, map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) { return nil, nil }

func (nopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

// ---- harness ----

type harness struct {
	svc      IChatService
	profiles *fakeProfileRepo
	messages *fakeMessageRepo
	metas    *fakeMetaRepo
	gateway  *fakeGateway
	sessions *memory.SessionRepository
	users    *fakeUserRepo
	port     *fakePort
}

func newHarness() *harness {
	profiles := newFakeProfileRepo()
	messages := &fakeMessageRepo{}
	metas := newFakeMetaRepo()
	gw := &fakeGateway{}
	users := &fakeUserRepo{}
	port := &fakePort{}
	sessions := memory.NewSessionRepository(time.Nanosecond)

	svc := NewChatService(
		&fakeFactory{uow: &fakeUow{profiles: profiles, messages: messages, metas: metas, users: users}},
		sessions,
		gw,
		port,
		&fakeJobQueue{},
		nil,
		nopLogger{},
		ChatConfig{RevealDelay: time.Millisecond},
	)

	return &harness{
		svc:      svc,
		profiles: profiles,
		messages: messages,
		metas:    metas,
		gateway:  gw,
		sessions: sessions,
		users:    users,
		port:     port,
	}
}

func (h *harness) seedCompleteProfile(userId uuid.UUID) {
	name := "Anna"
	gender := "female"
	year := 1991
	level := "intermediate"
	weekly := 4
	fiveK := "00:25:00"
	h.profiles.profiles[userId] = &entity.RunnerProfile{
		Id:              uuid.New(),
		UserId:          userId,
		Name:            &name,
		Gender:          &gender,
		BirthYear:       &year,
		Level:           &level,
		WeeklySessions:  &weekly,
		Current5KTime:   &fiveK,
		Language:        profile.LanguageEnglish,
		Agent:           profile.AgentCoach,
		ProfileComplete: true,
	}
}

func (h *harness) send(t *testing.T, userId uuid.UUID, text string) *dto.SendMessageResponse {
	t.Helper()
	res, err := h.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		Text:     text,
		ClientAt: time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	require.False(t, res.Dropped, "message %q was dropped by the turn guard", text)
	return res
}

// ---- tests ----

func TestOnboardingNeverCallsModel(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	answers := []string{"Hi!", "Anna", "female", "1991", "intermediate", "4"}
	for _, text := range answers {
		res := h.send(t, userId, text)
		assert.True(t, res.Onboarding, "still onboarding after %q", text)
	}

	// Final required field lands, onboarding completes.
	res := h.send(t, userId, "22:30")
	assert.False(t, res.Onboarding)
	assert.Equal(t, onboarding.CompletionMessage, res.Reply)

	assert.Equal(t, 0, h.gateway.calls(), "model was called during onboarding")

	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.ProfileComplete)
	assert.Equal(t, "Anna", *saved.Name)
	assert.Equal(t, "00:22:30", *saved.Current5KTime)
	assert.Equal(t, 1991, *saved.BirthYear)
}

func TestOnboardingRejectedAnswerReasksQuestion(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	h.send(t, userId, "Hello")      // poses the name question
	h.send(t, userId, "Erik")       // name accepted, poses gender
	res := h.send(t, userId, "???") // invalid gender

	assert.True(t, res.Onboarding)
	assert.Contains(t, res.Reply, onboarding.RetryMessage)
	assert.Contains(t, res.Reply, "gender")

	// A valid retry moves on.
	res = h.send(t, userId, "male")
	assert.NotContains(t, res.Reply, onboarding.RetryMessage)
}

func TestOnboardingChipAnswersArriveAsChips(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	h.send(t, userId, "Hey")
	res := h.send(t, userId, "Anna") // now asking for gender

	require.NotEmpty(t, res.QuickReplies)
	assert.Equal(t, "Male", res.QuickReplies[0].Label)
}

func TestTurnGuardDropsConcurrentDuplicate(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	sess := h.sessions.GetOrCreate(userId.String())
	require.True(t, sess.Guard.TryAcquire())
	defer sess.Guard.Release()

	res, err := h.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)
	assert.True(t, res.Dropped)

	// Nothing was persisted for the dropped message.
	assert.Empty(t, h.messages.bySender(entity.SenderUser))
}

func TestInferenceNeverOverwrites(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId) // 5K time already 00:25:00

	h.send(t, userId, "I ran my 5k in 19:00 today!")

	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, "00:25:00", *saved.Current5KTime, "inference overwrote a user-set field")
	assert.Equal(t, 1, h.gateway.calls())
}

func TestModelProfileUpdateOverwrites(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	h.gateway.answers = []*prompt.Answer{{
		Reply:         "Updated your 5K time, nice improvement!",
		ProfileUpdate: profile.Patch{profile.FieldCurrent5KTime: "00:19:00"},
	}}

	res := h.send(t, userId, "correction: my 5k is actually 19 flat")
	assert.True(t, res.ProfileUpdated)

	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, "00:19:00", *saved.Current5KTime)
}

func TestCoachingTurnPersistsBothSides(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	h.send(t, userId, "how should I train this week?")

	users := h.messages.bySender(entity.SenderUser)
	bots := h.messages.bySender(entity.SenderBot)
	require.Len(t, users, 1)
	require.Len(t, bots, 1)
	assert.Equal(t, "how should I train this week?", users[0].Text)
	assert.False(t, users[0].ServerAt.IsZero())
}

func TestCoachingTurnRecordsMeta(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	urgency := 0.8
	h.gateway.answers = []*prompt.Answer{{
		Reply:            "That sounds painful, let's ease off.",
		ProfileUpdate:    profile.Patch{},
		ConversationTags: []string{"injury"},
		UrgencyScore:     &urgency,
	}}

	h.send(t, userId, "my knee hurts when I run")

	meta, err := h.metas.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, []string{"injury"}, meta.Tags)
	assert.Equal(t, 0.8, meta.Urgency)
}

func TestModelSeesSummaryAndTranscript(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)
	h.profiles.profiles[userId].ConversationSummary = "Training for a fall half marathon."

	h.send(t, userId, "what pace for tempo runs?")

	assert.Equal(t, "Training for a fall half marathon.", h.gateway.lastAsk.SystemSummary)
	assert.Equal(t, "what pace for tempo runs?", h.gateway.lastAsk.Message)
	assert.Contains(t, h.gateway.lastAsk.RecentMessages, "user: what pace for tempo runs?")
}

func TestInitSessionGreetsOncePerSession(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	res, err := h.svc.InitSession(context.Background(), userId)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Anna")

	res, err = h.svc.InitSession(context.Background(), userId)
	require.NoError(t, err)
	assert.Empty(t, res.Reply, "greeted twice in one session")
}

func TestInitSessionResumesOnboarding(t *testing.T) {
	h := newHarness()
	userId := uuid.New()

	res, err := h.svc.InitSession(context.Background(), userId)
	require.NoError(t, err)
	assert.True(t, res.Onboarding)
	assert.Equal(t, onboarding.Steps[0].Question, res.Reply)
}

func TestInitSessionSeedsAccountName(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.users.user = &entity.User{Id: userId, FullName: "Erik Larsson"}

	res, err := h.svc.InitSession(context.Background(), userId)
	require.NoError(t, err)
	assert.True(t, res.Onboarding)
	assert.NotEqual(t, onboarding.Steps[0].Question, res.Reply, "asked for a name we already know")

	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.NotNil(t, saved.Name)
	assert.Equal(t, "Erik Larsson", *saved.Name)
}

func TestNewThreadClearsSummaryKeepsProfile(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)
	h.profiles.profiles[userId].ConversationSummary = "old thread summary"

	require.NoError(t, h.svc.NewThread(context.Background(), userId))

	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Empty(t, saved.ConversationSummary)
	assert.True(t, saved.ProfileComplete, "profile lost on new thread")

	if _, ok := h.sessions.Get(userId.String()); ok {
		t.Error("session survived NewThread")
	}
}

func TestSetAgent(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	err := h.svc.SetAgent(context.Background(), userId, "physio")
	assert.Error(t, err, "unknown agent accepted")

	require.NoError(t, h.svc.SetAgent(context.Background(), userId, profile.AgentRacePlanner))
	saved, err := h.profiles.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, profile.AgentRacePlanner, saved.Agent)
}

func TestGetHistoryReturnsChronological(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	h.send(t, userId, "first")
	time.Sleep(2 * time.Millisecond)
	h.send(t, userId, "second")

	res, err := h.svc.GetHistory(context.Background(), userId, 0)
	require.NoError(t, err)
	require.Len(t, res.Messages, 4) // two user turns, two bot replies
	assert.Equal(t, "first", res.Messages[0].Text)
	assert.Equal(t, "second", res.Messages[2].Text)
}

func TestWhitespaceOnlyMessageIsDropped(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	res, err := h.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Text: "   \t  "})
	require.NoError(t, err)
	assert.True(t, res.Dropped)

	assert.Empty(t, h.messages.bySender(entity.SenderUser))
	assert.Zero(t, h.gateway.calls())
	assert.Empty(t, h.port.byKind("user_bubble"))
}

func TestMessageIsTrimmedBeforeProcessing(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	h.send(t, userId, "  how far should my long run be?  ")

	saved := h.messages.bySender(entity.SenderUser)
	require.Len(t, saved, 1)
	assert.Equal(t, "how far should my long run be?", saved[0].Text)
}

func TestModelFailureEmitsApologeticReply(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)
	h.gateway.askErr = errors.New("upstream 500: secret-key-abc rejected")

	res, err := h.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{Text: "help me plan intervals"})
	require.NoError(t, err, "model failure must not fail the turn")
	assert.Equal(t, unavailableReply, res.Reply)
	assert.NotContains(t, res.Reply, "secret-key-abc")

	bubbles := h.port.byKind("bot_bubble")
	require.NotEmpty(t, bubbles, "no bot bubble on model failure")
	assert.Equal(t, unavailableReply, bubbles[len(bubbles)-1])

	// The failed turn leaves no bot row behind.
	assert.Empty(t, h.messages.bySender(entity.SenderBot))

	// The guard was released, so the user can retry.
	sess := h.sessions.GetOrCreate(userId.String())
	assert.True(t, sess.Guard.TryAcquire())
	sess.Guard.Release()
}

func TestCoachingReplyRevealsProgressively(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)

	reply := "Start easy then build with three tempo blocks and jog recoveries between them"
	h.gateway.answers = []*prompt.Answer{{
		Reply:        reply,
		QuickReplies: []prompt.QuickReply{{Label: "Show plan", Value: "plan"}},
	}}

	res := h.send(t, userId, "how should I run tempos?")
	assert.Equal(t, reply, res.Reply)

	assert.Eventually(t, func() bool {
		return len(h.port.byKind("choices")) > 0
	}, time.Second, 2*time.Millisecond, "choices never revealed")

	bubbles := h.port.byKind("bot_bubble")
	require.NotEmpty(t, bubbles)
	assert.Equal(t, reply, bubbles[len(bubbles)-1])

	fragments := h.port.byKind("typing")
	require.NotEmpty(t, fragments, "no typing increments pushed")
	prev := 0
	for _, f := range fragments {
		assert.True(t, strings.HasPrefix(reply, f), "fragment %q is not a prefix of the reply", f)
		assert.Greater(t, len(f), prev, "fragments must grow")
		prev = len(f)
	}
}

func TestUserMessageStoreFailureDoesNotBlockTurn(t *testing.T) {
	h := newHarness()
	userId := uuid.New()
	h.seedCompleteProfile(userId)
	h.messages.failNext = 1

	res := h.send(t, userId, "what pace today?")
	assert.Equal(t, "Sounds good!", res.Reply)

	// The bubble rendered even though the append was lost.
	bubbles := h.port.byKind("user_bubble")
	require.Len(t, bubbles, 1)
	assert.Equal(t, "what pace today?", bubbles[0])
	assert.Empty(t, h.messages.bySender(entity.SenderUser))
}
