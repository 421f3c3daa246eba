package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrEmptyMessage is returned for blank messages.
var ErrEmptyMessage = errors.New("message is empty")

// WeatherSource resolves weather for a destination name.
type WeatherSource interface {
	Lookup(ctx context.Context, location string) domain.WeatherResult
	ClearCache()
}

// TurnPublisher receives completed turns.
type TurnPublisher interface {
	Publish(ctx context.Context, event domain.TurnEvent) error
}

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	SystemPrompt string
	// ContextDays caps how many forecast days are rendered into a message.
	ContextDays int
	// LocationHistoryTurns bounds how many prior turns feed location
	// resolution. Zero means the whole history.
	LocationHistoryTurns int
	// Publisher is optional.
	Publisher TurnPublisher
	Clock     clockwork.Clock
}

// Service runs chat turns: it classifies, resolves a destination, enriches the
// outgoing message with weather, calls the model and records the exchange.
type Service struct {
	model    domain.ChatModel
	weather  WeatherSource
	sessions *SessionStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
}

// NewService creates a Service.
func NewService(model domain.ChatModel, weather WeatherSource, sessions *SessionStore, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	if opts.ContextDays <= 0 {
		opts.ContextDays = domain.DefaultContextDays
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Service{
		model:    model,
		weather:  weather,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// ProcessTurn handles one user message in the given session. The stored
// history receives the original message and the reply; only the copy sent to
// the model carries weather context. If the model call fails the history is
// restored to its state before the call and the model's error is returned
// unchanged.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, message string) (domain.TurnResult, error) {
	if strings.TrimSpace(message) == "" {
		return domain.TurnResult{}, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	start := s.opts.Clock.Now()
	log := observability.LoggerFromContext(ctx, s.logger).With("session_id", sessionID)

	sess, release := s.sessions.Acquire(sessionID)
	defer release()
	s.metrics.ActiveSessions.Set(float64(s.sessions.Count()))

	prior := sess.history.Turns()
	sources := s.enrich(ctx, log, message, sess.history.Recent(s.opts.LocationHistoryTurns))

	outgoing, augmented := domain.AugmentMessage(message, sources.snapshot, s.opts.ContextDays)
	if augmented {
		s.metrics.AugmentedTurns.Inc()
	}

	// Record the original message before calling the model. Until the reply
	// is appended, any exit (error or panic) restores the pre-turn history.
	preTurnLen := sess.history.Len()
	sess.history.Append(domain.UserTurn(message))
	committed := false
	defer func() {
		if !committed {
			sess.history.Rollback(preTurnLen)
			s.metrics.Turns.WithLabelValues("rolled_back").Inc()
		}
	}()

	messages := append(prior, domain.UserTurn(outgoing))
	log.Debug("calling model", "messages", len(messages), "augmented", augmented)

	reply, err := s.model.Complete(ctx, s.opts.SystemPrompt, messages)
	if err != nil {
		log.Error("model call failed, history rolled back", "error", err, "history_length", preTurnLen)
		return domain.TurnResult{}, err
	}

	sess.history.Append(domain.AssistantTurn(reply))
	committed = true
	s.metrics.Turns.WithLabelValues("completed").Inc()
	s.metrics.TurnDuration.Observe(s.opts.Clock.Since(start).Seconds())

	result := domain.TurnResult{
		SessionID: sessionID,
		Reply:     reply,
		DataSources: domain.DataSources{
			Weather:  sources.snapshot != nil,
			Location: sources.location,
			Cached:   sources.cached,
		},
		ConversationLength: sess.history.Len(),
	}
	log.Info("turn completed",
		"weather", result.DataSources.Weather,
		"cached", result.DataSources.Cached,
		"reply_chars", len(reply),
		"history_length", result.ConversationLength,
	)

	s.publish(ctx, log, message, result)
	return result, nil
}

// Reset clears a session's history and the weather cache.
func (s *Service) Reset(sessionID string) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	sess, release := s.sessions.Acquire(sessionID)
	defer release()

	sess.history.Clear()
	s.weather.ClearCache()
	s.logger.Info("conversation reset", "session_id", sessionID)
}

// NewSession creates an empty session and returns its id.
func (s *Service) NewSession() string {
	id := uuid.NewString()
	_, release := s.sessions.Acquire(id)
	release()
	s.metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	return id
}

// Transcript returns the stored history of a session.
func (s *Service) Transcript(sessionID string) []domain.Turn {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	return s.sessions.Transcript(sessionID)
}

// CheckReadiness reports whether the service can answer chat requests.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.model == nil {
		return errors.New("language model not configured")
	}
	return nil
}

type enrichment struct {
	location *string
	snapshot *domain.WeatherSnapshot
	cached   bool
}

func (s *Service) enrich(ctx context.Context, log *slog.Logger, message string, history []domain.Turn) enrichment {
	var e enrichment
	if !domain.NeedsWeather(message) {
		log.Debug("weather not needed")
		return e
	}

	dest, ok := domain.ResolveLocation(message, history)
	if !ok {
		log.Debug("weather needed but no destination found")
		return e
	}
	name := dest.Name
	e.location = &name

	result := s.weather.Lookup(ctx, dest.Name)
	if result.Status != domain.WeatherFound {
		log.Info("continuing without weather context", "location", name, "status", result.Status.String())
		return e
	}
	e.snapshot = result.Snapshot
	e.cached = result.CacheHit
	return e
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, message string, result domain.TurnResult) {
	if s.opts.Publisher == nil {
		return
	}
	event := domain.TurnEvent{
		ID:                 uuid.NewString(),
		SessionID:          result.SessionID,
		UserMessage:        message,
		Reply:              result.Reply,
		DataSources:        result.DataSources,
		ConversationLength: result.ConversationLength,
		CompletedAt:        s.opts.Clock.Now(),
	}
	if err := s.opts.Publisher.Publish(ctx, event); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Warn("publish turn event failed", "error", err, "event_id", event.ID)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("success").Inc()
}
