// Package backend talks to the CRM REST backend: one resource per entity, all sharing
// one Client that adds the session token and maps failures onto the core error kinds.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/session"
)

const (
	DefaultBaseURL = "https://admin-crm.onrender.com"
	DefaultTimeout = 30 * time.Second

	// answers are small JSON documents
	maxBodySize = 10 << 20
)

type (
	Client struct {
		baseURL string
		http    *http.Client
	}

	// call describes one backend request.
	call struct {
		method string
		path   string
		query  map[string]string
		body   interface{} // sent as JSON unless raw is set
		raw    io.Reader
		ctype  string

		// fallback is the error message used when the backend gives none.
		fallback string
		// rewrite replaces known backend messages.
		rewrite map[string]string
		// public calls carry no token (sign-in).
		public bool
	}

	response struct {
		status int
		body   []byte
	}
)

// NewClient returns a Client for baseURL. Requests are traced through otelhttp.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func NewClientFromConfig(conf *core.Config) *Client {
	return NewClient(conf.Backend.BaseURL, conf.Backend.Timeout)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// send performs cl and returns whatever the backend answered.
// Only a missing token and transport failures are errors here.
func (c *Client) send(ctx context.Context, cl call) (response, error) {
	var token string
	if !cl.public {
		sess, ok := session.FromContext(ctx)
		if !ok {
			return response{}, core.ErrUnauthenticated
		}
		token = sess.Token
	}

	body := cl.raw
	ctype := cl.ctype
	if body == nil && cl.body != nil {
		buf, err := sonic.Marshal(cl.body)
		if err != nil {
			return response{}, errors.Wrapf(err, "encoding %s %s", cl.method, cl.path)
		}
		body = bytes.NewReader(buf)
		ctype = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return response{}, errors.Wrapf(err, "building %s %s", cl.method, cl.path)
	}
	if len(cl.query) > 0 {
		q := req.URL.Query()
		for k, v := range cl.query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, ctx.Err()
		}
		return response{}, core.NewNetworkError(err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, core.NewNetworkError(err)
	}
	return response{status: resp.StatusCode, body: buf}, nil
}

// do performs cl and turns a non-2xx answer into an error.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	if resp.status >= 200 && resp.status < 300 {
		return resp.body, nil
	}

	msg := messageOf(resp.body)
	if rewritten, ok := cl.rewrite[msg]; ok {
		msg = rewritten
	}
	switch resp.status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, core.NewUnauthorizedError(resp.status, msg)
	}
	if msg == "" {
		msg = cl.fallback
	}
	if msg == "" {
		msg = fmt.Sprintf("Xatolik: %d", resp.status)
	}
	return nil, core.NewRemoteError(resp.status, msg)
}

// exec performs cl, ignoring the answer's body.
func (c *Client) exec(ctx context.Context, cl call) error {
	_, err := c.do(ctx, cl)
	return err
}

// idBody is the `{_id}` payload most single-record writes take.
type idBody struct {
	ID string `json:"_id"`
}
