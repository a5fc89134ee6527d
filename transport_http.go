package bancho

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/pkg/errors"
)

// HTTPTransport implements Transport as one POST per cycle against
// https://c.{server}, matching §4.3. The first call (via Login) carries no
// osu-token and expects a cho-token in the response; every call after that
// attaches the token from the login response.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	token    atomic.Value // string
}

// NewHTTPTransport builds the c.{server} endpoint for the given domain
// suffix (e.g. "ppy.sh" -> "https://c.ppy.sh").
func NewHTTPTransport(server string) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: fmt.Sprintf("https://c.%s", server),
		client:   &http.Client{},
	}
	t.token.Store("")
	return t
}

func (t *HTTPTransport) Login(ctx context.Context, req LoginRequest) (string, []byte, error) {
	body := fmt.Sprintf("%s\n%s\n%s\n", req.Username, req.PasswordMD5, req.Fingerprint)

	resp, err := t.post(ctx, []byte(body), false)
	if err != nil {
		return "", nil, newTransportError(err, "login request")
	}
	defer resp.Body.Close()

	token := resp.Header.Get("cho-token")
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, newTransportError(err, "read login response body")
	}
	if token != "" {
		t.token.Store(token)
	}
	return token, data, nil
}

// Cycle POSTs outbound (or a lone Ping if outbound is empty, per §4.3 — an
// empty body would otherwise look like a dead connection to the server)
// and returns the raw response body.
func (t *HTTPTransport) Cycle(ctx context.Context, outbound []byte) ([]byte, error) {
	if len(outbound) == 0 {
		outbound = encodePing()
	}
	resp, err := t.post(ctx, outbound, true)
	if err != nil {
		return nil, newTransportError(err, "cycle request")
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err, "read cycle response body")
	}
	return data, nil
}

func (t *HTTPTransport) post(ctx context.Context, body []byte, withToken bool) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("User-Agent", "osu!")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if withToken {
		if tok, _ := t.token.Load().(string); tok != "" {
			httpReq.Header.Set("osu-token", tok)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

// Close is a no-op: http.Client connections are pooled by net/http itself.
func (t *HTTPTransport) Close() error { return nil }
