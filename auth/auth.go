// Package auth acquires the authorized session for the remote task
// service: OAuth2 installed-app flow with an on-disk token cache, so the
// browser round trip happens once and refreshes are persisted silently.
package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/obreitwi/neorg-task-sync/internal/cfgpaths"
	"github.com/obreitwi/neorg-task-sync/internal/fsstore"
)

const (
	scopeTasks         = "https://www.googleapis.com/auth/tasks"
	scopeTasksReadonly = "https://www.googleapis.com/auth/tasks.readonly"
)

// Session is the token-bearing handle passed into every remote call.
type Session struct {
	config    *oauth2.Config
	token     *oauth2.Token
	cachePath string
}

// Login builds a session from the imported client secret and the token
// cache, running the interactive consent flow only when no usable cached
// token exists. Prompts go to out, the consent code is read from in.
func Login(ctx context.Context, in io.Reader, out io.Writer) (*Session, error) {
	secretPath, err := cfgpaths.ClientSecretFile()
	if err != nil {
		return nil, err
	}
	secret, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("read client secret (import it with `neorg-task-sync config import client-secret`): %w", err)
	}
	config, err := google.ConfigFromJSON(secret, scopeTasks, scopeTasksReadonly)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	cachePath, err := cfgpaths.TokenCacheFile()
	if err != nil {
		return nil, err
	}

	token, found, err := tokenFromCache(cachePath)
	if err != nil {
		return nil, err
	}
	if !found || (!token.Valid() && token.RefreshToken == "") {
		token, err = authorize(ctx, config, in, out)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cachePath, token); err != nil {
			return nil, err
		}
	}

	return &Session{config: config, token: token, cachePath: cachePath}, nil
}

// HTTPClient returns an http.Client that injects the bearer token and
// persists refreshed tokens back to the cache.
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	source := &cachingTokenSource{
		inner:     s.config.TokenSource(ctx, s.token),
		cachePath: s.cachePath,
		last:      s.token,
	}
	return oauth2.NewClient(ctx, source)
}

// authorize runs the installed-app consent flow: print the URL, read the
// code, exchange it for a token.
func authorize(ctx context.Context, config *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in your browser and paste the authorization code:\n%s\n> ", url)

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func tokenFromCache(path string) (*oauth2.Token, bool, error) {
	var token oauth2.Token
	found, err := fsstore.ReadJSON(path, &token)
	if err != nil {
		return nil, false, fmt.Errorf("read token cache: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &token, true, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := fsstore.WriteJSONAtomic(path, token, fsstore.FileOptions{}); err != nil {
		return fmt.Errorf("persist token cache: %w", err)
	}
	return nil
}

// cachingTokenSource persists every refreshed token so the next run skips
// the consent flow.
type cachingTokenSource struct {
	inner     oauth2.TokenSource
	cachePath string

	mu   sync.Mutex
	last *oauth2.Token
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := c.inner.Token()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil || token.AccessToken != c.last.AccessToken {
		c.last = token
		if err := saveToken(c.cachePath, token); err != nil {
			slog.Warn("failed to persist refreshed token", "error", err)
		}
	}
	return token, nil
}
