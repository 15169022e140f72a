package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"run-coach-be/internal/dto"
	"run-coach-be/internal/entity"
	"run-coach-be/internal/mapper"
	"run-coach-be/internal/pkg/logger"
	"run-coach-be/internal/repository/memory"
	"run-coach-be/internal/repository/specification"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/pkg/coach/gateway"
	"run-coach-be/pkg/coach/infer"
	"run-coach-be/pkg/coach/onboarding"
	"run-coach-be/pkg/coach/presentation"
	"run-coach-be/pkg/coach/profile"
	"run-coach-be/pkg/coach/prompt"
	"run-coach-be/pkg/coach/summary"
	"run-coach-be/pkg/coach/validate"
	"run-coach-be/pkg/events"
	pktNats "run-coach-be/pkg/nats"
	"run-coach-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	InitSession(ctx context.Context, userId uuid.UUID) (*dto.SendMessageResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, limit int) (*dto.ChatHistoryResponse, error)
	NewThread(ctx context.Context, userId uuid.UUID) error
	SetAgent(ctx context.Context, userId uuid.UUID, agent string) error
}

// ChatConfig tunes the conversation loop. Zero values fall back to the
// package defaults.
type ChatConfig struct {
	RecentWindow  int
	SummaryBatchN int
	SummaryIdle   time.Duration
	RevealDelay   time.Duration
}

func (c *ChatConfig) fill() {
	if c.RecentWindow <= 0 {
		c.RecentWindow = prompt.TranscriptWindow
	}
	if c.SummaryBatchN <= 0 {
		c.SummaryBatchN = summary.DefaultBatchN
	}
	if c.SummaryIdle <= 0 {
		c.SummaryIdle = summary.DefaultIdle
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = 400 * time.Millisecond
	}
}

// unavailableReply is the one message the user sees when the model call
// fails, regardless of the underlying error.
const unavailableReply = "Sorry, I'm having trouble thinking right now. Give me a moment and try again."

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	sessions         *memory.SessionRepository
	modelGateway     gateway.ModelGateway
	port             presentation.Port
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
	profileMapper    *mapper.ProfileMapper
	cfg              ChatConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionRepository,
	modelGateway gateway.ModelGateway,
	port presentation.Port,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	cfg ChatConfig,
) IChatService {
	cfg.fill()
	if port == nil {
		port = presentation.NopPort{}
	}
	return &chatService{
		uowFactory:       uowFactory,
		sessions:         sessions,
		modelGateway:     modelGateway,
		port:             port,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		profileMapper:    mapper.NewProfileMapper(),
		cfg:              cfg,
	}
}

// session returns the live per-user state, attaching the summarizer on
// first use so its fire callback can reach the queue.
func (s *chatService) session(userId uuid.UUID) *store.Session {
	sess := s.sessions.GetOrCreate(userId.String())
	if sess.Summarizer == nil {
		sess.Summarizer = summary.NewScheduler(s.cfg.SummaryBatchN, s.cfg.SummaryIdle, func(p summary.Payload) {
			s.enqueueSummarizeJob(userId, p)
		})
	}
	return sess
}

func (s *chatService) enqueueSummarizeJob(userId uuid.UUID, p summary.Payload) {
	job := dto.SummarizeJobMessage{
		UserId: userId,
		Sender: p.Sender,
		Text:   p.Text,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		s.logger.Error("chat", "failed to marshal summarize job", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(context.Background(), payload); err != nil {
		s.logger.Error("chat", "failed to enqueue summarize job", map[string]interface{}{"error": err.Error(), "user_id": userId.String()})
	}
}

// InitSession is called when a client opens the chat. It greets returning
// users once per session, or re-poses the pending onboarding question.
func (s *chatService) InitSession(ctx context.Context, userId uuid.UUID) (*dto.SendMessageResponse, error) {
	sess := s.session(userId)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	prof, err := s.loadProfile(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	s.seedName(ctx, uow, userId, prof)

	if !prof.ProfileComplete {
		step := onboarding.NextStep(prof)
		if step == nil {
			// Required fields are all present but the completion flag is
			// stale; recompute and fall through to the greeting.
			prof.Recompute()
		} else {
			sess.SetPhase(store.PhaseOnboarding)
			sess.SetPendingField(string(step.Key))
			s.port.ShowBotBubble(userId, step.Question)
			s.showChips(userId, step.Chips)
			return onboardingResponse(step), nil
		}
	}

	sess.SetPhase(store.PhaseCoaching)
	if !sess.MarkGreeted() {
		return &dto.SendMessageResponse{Onboarding: false}, nil
	}

	greeting := "Welcome back! Ready to pick up where we left off?"
	if prof.Name != nil {
		greeting = fmt.Sprintf("Welcome back, %s! Ready to pick up where we left off?", *prof.Name)
	}
	s.port.ShowBotBubble(userId, greeting)
	return &dto.SendMessageResponse{Reply: greeting, Onboarding: false}, nil
}

func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return &dto.SendMessageResponse{Dropped: true}, nil
	}

	sess := s.session(userId)

	if !sess.Guard.TryAcquire() {
		return &dto.SendMessageResponse{Dropped: true}, nil
	}
	defer sess.Guard.Release()

	// A new turn supersedes any progressive reveal still playing out.
	sess.BumpReveal()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	prof, err := s.loadProfile(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	// Render first. The append is best-effort: a store failure costs the
	// transcript one row, never the turn.
	s.port.ShowUserBubble(userId, text)
	sess.Summarizer.Enqueue(string(entity.SenderUser), text)

	userMsg := &entity.ChatMessage{
		Id:       uuid.New(),
		UserId:   userId,
		Sender:   entity.SenderUser,
		Text:     text,
		ClientAt: req.ClientAt,
		ServerAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		s.logger.Warn("chat", "failed to append user message", map[string]interface{}{"error": err.Error(), "user_id": userId.String()})
	}

	// Branch on completeness as of turn start: if inference completes the
	// profile mid-turn, this turn still finishes the questionnaire.
	wasComplete := prof.ProfileComplete

	// Passive inference never overwrites fields that are already set.
	inferred := infer.FromText(text)
	inferredKeys := inferred.Apply(prof, false)

	if !wasComplete {
		return s.onboardingTurn(ctx, uow, sess, userId, prof, text, len(inferredKeys) > 0)
	}
	return s.coachingTurn(ctx, uow, sess, userId, prof, text, len(inferredKeys) > 0)
}

// onboardingTurn handles one questionnaire exchange. The model is never
// called while required fields are missing.
func (s *chatService) onboardingTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	sess *store.Session,
	userId uuid.UUID,
	prof *profile.Profile,
	text string,
	inferredSomething bool,
) (*dto.SendMessageResponse, error) {
	sess.SetPhase(store.PhaseOnboarding)

	accepted := inferredSomething
	pending := sess.PendingField()
	if pending != "" {
		key := profile.FieldKey(pending)
		if !prof.IsSet(key) {
			if value, ok := validate.Normalize(key, text); ok {
				prof.Set(key, value)
				accepted = true
			}
		} else {
			// Inference already filled the pending field from this message.
			accepted = true
		}
	}

	var reply string
	var chips []string
	next := onboarding.NextStep(prof)
	switch {
	case next == nil:
		prof.Recompute()
		sess.SetPendingField("")
		sess.SetPhase(store.PhaseCoaching)
		reply = onboarding.CompletionMessage
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, events.NewProfileCompletedEvent(userId.String())); err != nil {
				s.logger.Warn("chat", "failed to publish profile completed event", map[string]interface{}{"error": err.Error()})
			}
		}
	case accepted || pending == "":
		sess.SetPendingField(string(next.Key))
		reply = next.Question
		chips = next.Chips
	default:
		// Invalid answer: re-pose the same question.
		reply = onboarding.RetryMessage + " " + next.Question
		chips = next.Chips
	}

	if err := s.persistTurn(ctx, uow, userId, prof, reply); err != nil {
		return nil, err
	}

	s.port.ShowBotBubble(userId, reply)
	s.showChips(userId, chips)
	sess.Summarizer.Enqueue(string(entity.SenderBot), reply)

	res := &dto.SendMessageResponse{
		Reply:          reply,
		ProfileUpdated: true,
		Onboarding:     next != nil,
	}
	for _, c := range chips {
		res.QuickReplies = append(res.QuickReplies, dto.QuickReplyDTO{Label: c, Value: c})
	}
	return res, nil
}

func (s *chatService) coachingTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	sess *store.Session,
	userId uuid.UUID,
	prof *profile.Profile,
	text string,
	inferredSomething bool,
) (*dto.SendMessageResponse, error) {
	sess.SetPhase(store.PhaseCoaching)

	recent, err := uow.ChatMessageRepository().FindRecentByUserId(ctx, userId, s.cfg.RecentWindow)
	if err != nil {
		return nil, err
	}
	lines := make([]prompt.Line, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, prompt.Line{Sender: string(m.Sender), Text: m.Text})
	}

	thinking := s.port.ShowThinking(userId)
	answer, err := s.modelGateway.Ask(ctx, prompt.AskContext{
		SystemSummary:  prof.ConversationSummary,
		RecentMessages: prompt.RenderTranscript(lines),
		Message:        text,
		UserProfile:    prof,
	})
	thinking.Remove()
	if err != nil {
		s.logger.Error("chat", "model call failed", map[string]interface{}{"error": err.Error(), "user_id": userId.String()})
		if inferredSomething {
			if saveErr := s.saveProfile(ctx, uow, userId, prof); saveErr != nil {
				s.logger.Warn("chat", "failed to save inferred profile fields", map[string]interface{}{"error": saveErr.Error(), "user_id": userId.String()})
			}
		}
		s.port.ShowBotBubble(userId, unavailableReply)
		return &dto.SendMessageResponse{
			Reply:          unavailableReply,
			ProfileUpdated: inferredSomething,
			Onboarding:     false,
		}, nil
	}

	profileUpdated := inferredSomething
	if len(answer.ProfileUpdate) > 0 {
		// Model-declared updates are authoritative and may overwrite.
		if keys := answer.ProfileUpdate.Apply(prof, true); len(keys) > 0 {
			profileUpdated = true
		}
	}

	if err := s.persistTurn(ctx, uow, userId, prof, answer.Reply); err != nil {
		return nil, err
	}

	sess.Summarizer.Enqueue(string(entity.SenderBot), answer.Reply)

	s.reveal(userId, sess, sess.RevealGen(), answer)
	s.recordMeta(ctx, userId, answer)

	res := &dto.SendMessageResponse{
		Reply:          answer.Reply,
		ProfileUpdated: profileUpdated,
		Onboarding:     false,
	}
	for _, qr := range answer.QuickReplies {
		res.QuickReplies = append(res.QuickReplies, dto.QuickReplyDTO{Label: qr.Label, Value: qr.Value})
	}
	if answer.RoleSuggestion != nil {
		res.RoleOptions = answer.RoleSuggestion.Options
	}
	if answer.VisualCard != nil {
		res.Card = visualCardToDTO(answer.VisualCard)
	}
	if answer.NextAction != nil {
		res.NextAction = &dto.NextActionDTO{Type: answer.NextAction.Type, Payload: answer.NextAction.Payload}
	}
	return res, nil
}

// revealChunk is how many words each typing increment adds.
const revealChunk = 3

// reveal plays a coaching reply out progressively: typing increments, the
// full bubble, then choices and cards with small delays so the reply lands
// first. The turn does not wait for it. A newer turn bumps the generation
// and the stale reveal stops short.
func (s *chatService) reveal(userId uuid.UUID, sess *store.Session, gen uint64, answer *prompt.Answer) {
	go func() {
		pace := s.cfg.RevealDelay / 4

		words := strings.Fields(answer.Reply)
		for i := revealChunk; i < len(words); i += revealChunk {
			if sess.RevealGen() != gen {
				return
			}
			s.port.Typing(userId, strings.Join(words[:i], " "))
			time.Sleep(pace)
		}
		if sess.RevealGen() != gen {
			return
		}
		s.port.ShowBotBubble(userId, answer.Reply)

		if len(answer.QuickReplies) == 0 && answer.VisualCard == nil {
			return
		}
		time.Sleep(s.cfg.RevealDelay)
		if sess.RevealGen() != gen {
			return
		}
		if len(answer.QuickReplies) > 0 {
			s.port.ShowChoices(userId, answer.QuickReplies)
		}
		if answer.VisualCard != nil {
			time.Sleep(s.cfg.RevealDelay)
			if sess.RevealGen() != gen {
				return
			}
			s.port.SetExpandedMode(userId, true)
			s.port.ShowCard(userId, *answer.VisualCard)
		}
	}()
}

// recordMeta upserts conversation tags/urgency and mirrors them to the bus.
// Failures are logged, never surfaced to the turn.
func (s *chatService) recordMeta(ctx context.Context, userId uuid.UUID, answer *prompt.Answer) {
	if len(answer.ConversationTags) == 0 && answer.UrgencyScore == nil {
		return
	}
	urgency := 0.0
	if answer.UrgencyScore != nil {
		urgency = *answer.UrgencyScore
	}
	meta := &entity.ConversationMeta{
		Id:        uuid.New(),
		UserId:    userId,
		Tags:      answer.ConversationTags,
		Urgency:   urgency,
		UpdatedAt: time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationMetaRepository().Upsert(ctx, meta); err != nil {
		s.logger.Warn("chat", "failed to upsert conversation meta", map[string]interface{}{"error": err.Error(), "user_id": userId.String()})
		return
	}
	if s.eventPublisher != nil {
		evt := events.NewConversationAnalyzedEvent(userId.String(), answer.ConversationTags, urgency)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("chat", "failed to publish conversation analyzed event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// persistTurn writes the bot message and the (possibly changed) profile in
// one transaction.
func (s *chatService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, prof *profile.Profile, reply string) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	botMsg := &entity.ChatMessage{
		Id:       uuid.New(),
		UserId:   userId,
		Sender:   entity.SenderBot,
		Text:     reply,
		ServerAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, botMsg); err != nil {
		return err
	}

	if err := s.saveProfile(ctx, uow, userId, prof); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID, limit int) (*dto.ChatHistoryResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.ChatMessageRepository().FindRecentByUserId(ctx, userId, limit)
	if err != nil {
		return nil, err
	}
	res := &dto.ChatHistoryResponse{Messages: make([]dto.ChatMessageDTO, 0, len(msgs))}
	for _, m := range msgs {
		res.Messages = append(res.Messages, dto.ChatMessageDTO{
			Id:       m.Id,
			Sender:   string(m.Sender),
			Text:     m.Text,
			ClientAt: m.ClientAt,
			ServerAt: m.ServerAt,
		})
	}
	return res, nil
}

// NewThread wipes the conversation summary and session state but keeps the
// profile and the message log.
func (s *chatService) NewThread(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.RunnerProfileRepository().UpdateSummary(ctx, userId, ""); err != nil {
		return err
	}
	if sess, ok := s.sessions.Get(userId.String()); ok {
		if sess.Summarizer != nil {
			sess.Summarizer.Flush()
		}
		sess.BumpReveal()
	}
	s.sessions.Delete(userId.String())
	return nil
}

func (s *chatService) SetAgent(ctx context.Context, userId uuid.UUID, agent string) error {
	valid := false
	for _, a := range profile.Agents {
		if a == agent {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown agent %q", agent)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	prof, err := s.loadProfile(ctx, uow, userId)
	if err != nil {
		return err
	}
	prof.Agent = agent
	if err := s.saveProfile(ctx, uow, userId, prof); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewAgentSwitchedEvent(userId.String(), agent)); err != nil {
			s.logger.Warn("chat", "failed to publish agent switched event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *chatService) loadProfile(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*profile.Profile, error) {
	ent, err := uow.RunnerProfileRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	return s.profileMapper.ToDomain(ent), nil
}

func (s *chatService) saveProfile(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, prof *profile.Profile) error {
	repo := uow.RunnerProfileRepository()
	ent, err := repo.FindByUserId(ctx, userId)
	if err != nil {
		return err
	}
	if ent == nil {
		ent = &entity.RunnerProfile{
			Id:     uuid.New(),
			UserId: userId,
		}
		s.profileMapper.ApplyDomain(ent, prof)
		return repo.Create(ctx, ent)
	}
	s.profileMapper.ApplyDomain(ent, prof)
	return repo.Update(ctx, ent)
}

// seedName copies the account display name into an unnamed runner profile so
// onboarding can skip the name question for registered users.
func (s *chatService) seedName(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, prof *profile.Profile) {
	if prof.Name != nil {
		return
	}
	acct, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || acct == nil || acct.FullName == "" {
		return
	}
	norm, ok := validate.Normalize(profile.FieldName, acct.FullName)
	if !ok || !prof.Set(profile.FieldName, norm) {
		return
	}
	if err := s.saveProfile(ctx, uow, userId, prof); err != nil {
		s.logger.Warn("chat", "failed to seed profile name", map[string]interface{}{"error": err.Error(), "user_id": userId.String()})
	}
}

func (s *chatService) showChips(userId uuid.UUID, chips []string) {
	if len(chips) == 0 {
		return
	}
	qrs := make([]prompt.QuickReply, 0, len(chips))
	for _, c := range chips {
		qrs = append(qrs, prompt.QuickReply{Label: c, Value: c})
	}
	s.port.ShowChoices(userId, qrs)
}

func onboardingResponse(step *onboarding.Step) *dto.SendMessageResponse {
	res := &dto.SendMessageResponse{
		Reply:      step.Question,
		Onboarding: true,
	}
	for _, c := range step.Chips {
		res.QuickReplies = append(res.QuickReplies, dto.QuickReplyDTO{Label: c, Value: c})
	}
	return res
}

func visualCardToDTO(card *prompt.VisualCard) *dto.VisualCardDTO {
	out := &dto.VisualCardDTO{
		Title:       card.Title,
		Description: card.Description,
		Bullets:     card.Bullets,
	}
	for _, cta := range card.CTAs {
		out.CTAs = append(out.CTAs, dto.QuickReplyDTO{Label: cta.Label, Value: cta.Value})
	}
	return out
}
