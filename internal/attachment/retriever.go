package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/carelane/printcore/pkg/circuitbreaker"
)

// RetrievalError is an authorization or availability failure from the
// document backend. 401, 403 and 404 are distinct user-facing outcomes,
// never a single generic failure.
type RetrievalError struct {
	StatusCode int
	URL        string
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("attachment retrieval failed: %s (%d): %s", e.UserMessage(), e.StatusCode, e.URL)
}

// UserMessage returns the message shown to the user. Only 401 suggests
// re-authentication; 403 and 404 are terminal.
func (e *RetrievalError) UserMessage() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "session expired"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "not found"
	default:
		return "retrieval failed"
	}
}

// Payload is a fetched attachment body plus its content type.
type Payload struct {
	Body        []byte
	ContentType string
}

// TokenProvider supplies the current bearer token for authenticated fetches.
type TokenProvider func() string

// Retriever fetches resolved attachments. Authenticated fetches run through
// a circuit breaker; each retrieval performs at most one fetch plus one
// fallback attempt, with no backoff. A failed auth attempt surfaces
// immediately as a distinct error kind.
type Retriever struct {
	resolver *Resolver
	client   *http.Client
	token    TokenProvider
	breaker  *circuitbreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewRetriever creates a retriever around the given resolver.
func NewRetriever(resolver *Resolver, token TokenProvider, logger *zap.Logger) (*Retriever, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("attachment-retrieval"), logger)
	if err != nil {
		return nil, err
	}
	return &Retriever{
		resolver: resolver,
		client:   &http.Client{Timeout: 30 * time.Second},
		token:    token,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

// Fetch retrieves a resolved attachment.
//
// API locators always use the authenticated channel. Non-API locators that
// still point at our own backend try the authenticated channel first and
// fall back once to an unauthenticated direct load; only a genuinely
// external URL is loaded directly without credentials.
func (r *Retriever) Fetch(ctx context.Context, res Resolution) (*Payload, error) {
	if res.IsAPI {
		return r.fetchAuthenticated(ctx, res.URL)
	}

	if r.resolver.SameBackend(res.URL) {
		payload, err := r.fetchAuthenticated(ctx, res.URL)
		if err == nil {
			return payload, nil
		}
		var rerr *RetrievalError
		if errors.As(err, &rerr) && rerr.StatusCode == http.StatusUnauthorized {
			// Session problems do not block public static files.
			r.logger.Debug("authenticated static load failed, trying direct",
				zap.String("url", res.URL))
			return r.fetchDirect(ctx, res.URL)
		}
		return nil, err
	}

	return r.fetchDirect(ctx, res.URL)
}

func (r *Retriever) fetchAuthenticated(ctx context.Context, url string) (*Payload, error) {
	result, err := r.breaker.Execute(ctx, func() (interface{}, error) {
		return r.do(ctx, url, true)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Payload), nil
}

func (r *Retriever) fetchDirect(ctx context.Context, url string) (*Payload, error) {
	return r.do(ctx, url, false)
}

func (r *Retriever) do(ctx context.Context, url string, authenticated bool) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if authenticated && r.token != nil {
		if tok := r.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RetrievalError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read attachment body: %w", err)
	}

	return &Payload{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}
