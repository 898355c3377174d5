// Package teamslog delivers log records to a chat channel through an incoming
// webhook. Records are rendered either as a MessageCard with facts, a colored
// severity and an avatar, or as a single line of text.
package teamslog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record is one log entry handed over by a logging framework.
type Record struct {
	Level Level

	// LevelName is shown on the notification. It defaults to Level.String().
	LevelName string

	Message string
	Fields  []Field
}

func (r *Record) levelName() string {
	if r.LevelName != "" {
		return r.LevelName
	}

	return r.Level.String()
}

// Handler renders records and posts them to one webhook.
// Its settings are fixed at construction, so a Handler is safe for
// concurrent use.
type Handler struct {
	level  Level
	style  Style
	name   string
	bubble bool

	connectTimeout time.Duration
	timeout        time.Duration
	client         *http.Client
	avatarBase     string
	masker         factMasker
	errOut         io.Writer
	registerer     prometheus.Registerer

	dispatcher *Dispatcher
	formatter  Formatter
	reporter   *reporter
	metrics    *metrics

	optErr error
}

// New creates a Handler posting to webhookURL. It fails if the URL or any
// option is invalid.
func New(webhookURL string, opts ...Option) (*Handler, error) {
	if err := validateWebhookURL(webhookURL); err != nil {
		return nil, err
	}

	h := &Handler{
		level:          defaultLevel,
		style:          StyleCard,
		bubble:         true,
		connectTimeout: DefaultConnectTimeout,
		timeout:        DefaultTimeout,
		avatarBase:     DefaultAvatarBaseURL,
		errOut:         os.Stderr,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.optErr != nil {
		return nil, h.optErr
	}

	client := h.client
	if client == nil {
		client = newHTTPClient(h.connectTimeout, h.timeout)
	}

	h.dispatcher = &Dispatcher{url: webhookURL, client: client}
	h.reporter = newReporter(h.errOut)

	if h.registerer != nil {
		h.metrics = newMetrics(h.registerer)
	}

	switch h.style {
	case StyleSimple:
		h.formatter = NewSimpleFormatter(h.name)
	default:
		h.formatter = &cardFormatter{name: h.name, avatarBase: h.avatarBase, masker: &h.masker}
	}

	return h, nil
}

// NewFromConfig validates cfg and creates a Handler from it. Extra options
// are applied after the ones derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return New(cfg.WebhookURL, append(cfg.options(), opts...)...)
}

// Level returns the minimum level of the handler.
func (h *Handler) Level() Level {
	return h.level
}

// Style returns the payload style of the handler.
func (h *Handler) Style() Style {
	return h.style
}

// Bubble reports whether records should continue to other handlers of the
// logging framework after this one.
func (h *Handler) Bubble() bool {
	return h.bubble
}

// IsHandling reports whether records of the given level are delivered.
func (h *Handler) IsHandling(level Level) bool {
	return level >= h.level
}

// Handle delivers r if its level is at least the handler's level.
//
// Handle never panics. Rendering and delivery failures are written to the
// handler's error output and returned; the HTTP response is not inspected.
func (h *Handler) Handle(ctx context.Context, r Record) (err error) {
	if !h.IsHandling(r.Level) {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	levelName := r.levelName()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("teamslog: panic while handling record: %v", rec)
			h.reporter.report(levelName, "handling failed", err)
			h.metrics.observe(h.style, levelName, resultRenderError, 0)
		}
	}()

	p, err := h.formatter.Format(&r)
	if err != nil {
		h.reporter.report(levelName, "rendering failed", err)
		h.metrics.observe(h.style, levelName, resultRenderError, 0)

		return fmt.Errorf("render record: %w", err)
	}

	start := time.Now()

	if err := h.dispatcher.Send(ctx, p); err != nil {
		h.reporter.report(levelName, "delivery failed", err)
		h.metrics.observe(h.style, levelName, resultFailed, time.Since(start).Seconds())

		return err
	}

	h.metrics.observe(h.style, levelName, resultSent, time.Since(start).Seconds())

	return nil
}

// Format renders r into the payload Handle would post for it, without
// delivering it. Level filtering does not apply.
func (h *Handler) Format(r Record) (p Payload, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("teamslog: panic while rendering record: %v", rec)
		}
	}()

	return h.formatter.Format(&r)
}

// Log delivers a record built from its arguments.
func (h *Handler) Log(ctx context.Context, level Level, msg string, fields ...Field) error {
	return h.Handle(ctx, Record{Level: level, Message: msg, Fields: fields})
}

// Logw delivers a record whose context is given as alternating keys and
// values, e.g. Logw(ctx, LevelError, "upload failed", "bucket", b, "error", err).
func (h *Handler) Logw(ctx context.Context, level Level, msg string, kvs ...interface{}) error {
	if !h.IsHandling(level) {
		return nil
	}

	return h.Handle(ctx, Record{Level: level, Message: msg, Fields: fieldsFromKVs(kvs...)})
}

// Errorw delivers an error record with key-value context.
func (h *Handler) Errorw(ctx context.Context, msg string, kvs ...interface{}) error {
	return h.Logw(ctx, LevelError, msg, kvs...)
}

// Warnw delivers a warning record with key-value context.
func (h *Handler) Warnw(ctx context.Context, msg string, kvs ...interface{}) error {
	return h.Logw(ctx, LevelWarning, msg, kvs...)
}

// Infow delivers an info record with key-value context.
func (h *Handler) Infow(ctx context.Context, msg string, kvs ...interface{}) error {
	return h.Logw(ctx, LevelInfo, msg, kvs...)
}

// fieldsFromKVs converts alternating keys and values into fields.
// Field arguments are kept as they are and error values become error fields.
func fieldsFromKVs(kvs ...interface{}) []Field {
	fields := make([]Field, 0, len(kvs)/2+1)

	for i := 0; i < len(kvs); {
		if f, ok := kvs[i].(Field); ok {
			fields = append(fields, f)
			i++

			continue
		}

		key, ok := kvs[i].(string)
		if !ok {
			key = fmt.Sprint(kvs[i])
		}

		if i+1 >= len(kvs) {
			fields = append(fields, F(key, "KEY_WITHOUT_VALUE"))

			break
		}

		fields = append(fields, Any(key, kvs[i+1]))
		i += 2
	}

	return fields
}
