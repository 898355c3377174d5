package teamslog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultConnectTimeout bounds the TCP connect of a delivery.
	DefaultConnectTimeout = 3 * time.Second
	// DefaultTimeout bounds a whole delivery, response included.
	DefaultTimeout = 10 * time.Second
)

// Dispatcher posts payloads to one webhook endpoint.
// A Dispatcher is safe for concurrent use.
type Dispatcher struct {
	url    string
	client *http.Client
}

// NewDispatcher creates a Dispatcher for endpoint using the default timeouts.
func NewDispatcher(endpoint string) *Dispatcher {
	return &Dispatcher{url: endpoint, client: newHTTPClient(DefaultConnectTimeout, DefaultTimeout)}
}

func newHTTPClient(connectTimeout, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Send serializes p and posts it once.
// Only serialization and transport failures are reported; the response status
// and body are not inspected.
func (d *Dispatcher) Send(ctx context.Context, p Payload) error {
	if p == nil {
		return errors.New("nil payload")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", p.Style(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.ContentLength = int64(len(body))

	resp, err := d.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = RedactURL(ue.URL)
		}

		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return nil
}
