package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	unavailableReply = "I am unable to connect to my brain right now. Please check my API Key settings."
	failureReply     = "I'm having trouble thinking right now. (Error: %s)"
)

// Generator sends a prompt to a language model and returns its text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Observer receives one call per relayed message. result is ok, error or unavailable.
type Observer interface {
	ObserveChat(result string, d time.Duration)
}

type Relay struct {
	gen      Generator
	persona  Persona
	log      *slog.Logger
	observer Observer
}

type RelayOption func(*Relay)

func WithObserver(o Observer) RelayOption {
	return func(r *Relay) { r.observer = o }
}

func WithLogger(log *slog.Logger) RelayOption {
	return func(r *Relay) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRelay builds a relay; gen may be nil when no model credential is configured.
func NewRelay(gen Generator, persona Persona, opts ...RelayOption) *Relay {
	r := &Relay{
		gen:     gen,
		persona: persona,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond never fails: every problem becomes a user facing apology.
func (r *Relay) Respond(ctx context.Context, userText, chatContext string) string {
	ctx, span := otel.Tracer("github.com/geocoder89/wellbot/internal/chat").Start(ctx, "chat.respond")
	defer span.End()

	start := time.Now()

	if r.gen == nil {
		r.observe("unavailable", start)
		span.SetAttributes(attribute.String("chat.result", "unavailable"))
		return unavailableReply
	}

	prompt := r.persona.Prompt(userText, chatContext)

	r.log.DebugContext(ctx, "chat relay sending prompt", "persona", r.persona.Name, "message_len", len(userText))

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		r.observe("error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		r.log.ErrorContext(ctx, "chat generation failed", "err", err)
		return fmt.Sprintf(failureReply, err.Error())
	}

	r.observe("ok", start)
	span.SetAttributes(attribute.String("chat.result", "ok"))
	r.log.DebugContext(ctx, "chat relay response received", "response_len", len(text))

	return text
}

func (r *Relay) observe(result string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveChat(result, time.Since(start))
	}
}
