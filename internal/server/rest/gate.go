package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
)

// SessionChecker asks whether a session cookie grants dashboard access.
// Any error means no.
type SessionChecker interface {
	Check(ctx context.Context, session *http.Cookie) error
}

// RemoteChecker calls the verify endpoint over HTTP, forwarding only the
// session cookie.
type RemoteChecker struct {
	client *http.Client
	url    string
}

// NewRemoteChecker builds a checker for baseURL. A zero timeout means none.
func NewRemoteChecker(baseURL string, timeout time.Duration) *RemoteChecker {
	return &RemoteChecker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		url: strings.TrimRight(baseURL, "/") + common.VerifyPath,
	}
}

// Check calls the verify endpoint with only the session cookie attached.
// Any transport error or non-200 status is an error.
func (c *RemoteChecker) Check(ctx context.Context, session *http.Cookie) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verify returned %d", resp.StatusCode)
	}
	return nil
}

// Gate decides, by path, whether a page request passes or is redirected.
//
//   - /dashboard and below: no cookie goes to /signin; a cookie the verify
//     endpoint does not accept goes to /.
//   - /signin and /signup: any session cookie goes to /.
//   - everything else passes.
type Gate struct {
	checker SessionChecker
	metrics *Metrics
	logger  logging.Logger
}

// NewGate builds a gate. metrics may be nil.
func NewGate(checker SessionChecker, metrics *Metrics, l logging.Logger) *Gate {
	return &Gate{checker: checker, metrics: metrics, logger: l.With("module", "gate")}
}

func isProtected(path string) bool {
	return path == "/dashboard" || strings.HasPrefix(path, "/dashboard/")
}

func isAuthPage(path string) bool {
	return path == "/signin" || path == "/signup"
}

// Decide returns the redirect target, or "" to pass the request through.
func (g *Gate) Decide(r *http.Request) string {
	path := r.URL.Path
	if !isProtected(path) && !isAuthPage(path) {
		return ""
	}

	session, err := r.Cookie(common.SessionCookieName)
	hasSession := err == nil

	if isAuthPage(path) {
		if hasSession {
			return "/"
		}
		return ""
	}

	if !hasSession {
		return "/signin"
	}
	if err := g.checker.Check(r.Context(), session); err != nil {
		g.logger.Debug(r.Context(), "dashboard access denied", "path", path, "error", err)
		return "/"
	}
	return ""
}

// Middleware redirects with 307 when Decide returns a target and otherwise
// calls next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target := g.Decide(r); target != "" {
			if g.metrics != nil {
				g.metrics.GateRedirected(target)
			}
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}
