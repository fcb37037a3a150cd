package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soulbound/internal/resolution/metrics"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/circuit"
	"soulbound/pkg/platform/sentinel"
)

// ErrCircuitOpen is returned while the remote identity registry is considered
// down.
var ErrCircuitOpen = fmt.Errorf("identity peer circuit open: %w", sentinel.ErrUnavailable)

// HTTPResolver resolves against a remote identity registry's HTTP routes.
// The peer base URL comes from configuration.
type HTTPResolver struct {
	baseURL *url.URL
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type HTTPResolverOption func(*HTTPResolver)

func WithHTTPClient(client *http.Client) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.client = client
	}
}

func WithBreaker(b *circuit.Breaker) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.breaker = b
	}
}

func WithHTTPLogger(logger *slog.Logger) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.logger = logger
	}
}

func WithHTTPMetrics(m *metrics.Metrics) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.metrics = m
	}
}

func NewHTTPResolver(peerURL string, opts ...HTTPResolverOption) (*HTTPResolver, error) {
	u, err := url.Parse(strings.TrimRight(peerURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid identity peer url %q", peerURL)
	}
	r := &HTTPResolver{
		baseURL: u,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New("identity-peer"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type peerSoul struct {
	SoulID  domain.SoulID    `json:"soul_id"`
	Account domain.AccountID `json:"account"`
}

type peerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (r *HTTPResolver) ResolveID(ctx context.Context, account domain.AccountID) (domain.SoulID, error) {
	var out peerSoul
	if err := r.get(ctx, "/accounts/"+url.PathEscape(string(account))+"/soul", &out); err != nil {
		return domain.SoulID{}, err
	}
	return out.SoulID, nil
}

func (r *HTTPResolver) ResolveAccount(ctx context.Context, id domain.SoulID) (domain.AccountID, error) {
	var out peerSoul
	if err := r.get(ctx, "/souls/"+id.String()+"/account", &out); err != nil {
		return "", err
	}
	return out.Account, nil
}

func (r *HTTPResolver) get(ctx context.Context, path string, out any) error {
	if !r.breaker.Allow() {
		return ErrCircuitOpen
	}

	err := r.do(ctx, path, out)
	var remote *remoteError
	if err == nil || errors.As(err, &remote) {
		// The peer answered; a coded refusal is not an availability problem.
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "identity peer circuit closed", "breaker", r.breaker.Name())
			r.metrics.SetCircuitOpen(false)
		}
		if remote != nil {
			return remote.err
		}
		return nil
	}

	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.logger.WarnContext(ctx, "identity peer circuit opened",
			"breaker", r.breaker.Name(),
			"error", err,
		)
		r.metrics.SetCircuitOpen(true)
	}
	return err
}

type remoteError struct{ err error }

func (e *remoteError) Error() string { return e.err.Error() }

func (r *HTTPResolver) do(ctx context.Context, path string, out any) error {
	endpoint := r.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build peer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("call identity peer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read identity peer response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode identity peer response: %w", err)
		}
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("identity peer returned %d", resp.StatusCode)
	default:
		var pe peerError
		_ = json.Unmarshal(body, &pe)
		code := dErrors.Code(pe.Error)
		if code == "" {
			code = dErrors.CodeRemoteResolutionFault
		}
		return &remoteError{err: dErrors.New(code, pe.ErrorDescription)}
	}
}
