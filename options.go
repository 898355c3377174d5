package teamslog

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLevel sets the minimum level of delivered records.
func WithLevel(level Level) Option {
	return func(h *Handler) {
		if _, ok := levelNames[level]; !ok {
			h.optErr = fmt.Errorf("%w: unknown level %d", ErrInvalidConfig, int(level))

			return
		}

		h.level = level
	}
}

// WithStyle sets the payload style.
func WithStyle(style Style) Option {
	return func(h *Handler) {
		if style != StyleCard && style != StyleSimple {
			h.optErr = fmt.Errorf("%w: invalid style %q", ErrInvalidConfig, style)

			return
		}

		h.style = style
	}
}

// WithName sets the sender name shown on every notification.
func WithName(name string) Option {
	return func(h *Handler) {
		h.name = name
	}
}

// WithBubble sets whether records continue to other handlers.
func WithBubble(bubble bool) Option {
	return func(h *Handler) {
		h.bubble = bubble
	}
}

// WithTimeouts sets the connect and total timeouts of a delivery.
// Zero keeps the respective default.
func WithTimeouts(connect, total time.Duration) Option {
	return func(h *Handler) {
		if connect < 0 || total < 0 {
			h.optErr = fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)

			return
		}

		if connect > 0 {
			h.connectTimeout = connect
		}

		if total > 0 {
			h.timeout = total
		}
	}
}

// WithHTTPClient replaces the HTTP client used for deliveries.
// The timeouts of the handler are not applied to it.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithAvatarBaseURL sets the image service used for card avatars.
func WithAvatarBaseURL(base string) Option {
	return func(h *Handler) {
		if base != "" {
			h.avatarBase = base
		}
	}
}

// WithMaskedKeys hides the values of facts with one of the given names.
// Names are matched case-sensitively.
func WithMaskedKeys(keys ...string) Option {
	return func(h *Handler) {
		h.masker.addExact(keys...)
	}
}

// WithMaskedKeysInsensitive hides the values of facts with one of the given
// names, ignoring case.
func WithMaskedKeysInsensitive(keys ...string) Option {
	return func(h *Handler) {
		h.masker.addFolded(keys...)
	}
}

// WithErrorOutput sets where delivery failures are reported.
// A nil writer disables reporting.
func WithErrorOutput(w io.Writer) Option {
	return func(h *Handler) {
		h.errOut = w
	}
}

// WithRegisterer registers the delivery metrics of the handler with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(h *Handler) {
		h.registerer = reg
	}
}
