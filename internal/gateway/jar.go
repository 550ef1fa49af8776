package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/target/rightname-go/internal/ports"
)

// persistentJar is a cookie jar whose cookies for the API origin survive restarts.
type persistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	base   *url.URL
	store  ports.DurableStore
	logger *slog.Logger
	last   string
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

func newPersistentJar(base *url.URL, store ports.DurableStore, logger *slog.Logger) (*persistentJar, error) {
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	return &persistentJar{jar: jar, base: base, store: store, logger: logger}, nil
}

func (p *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jar.SetCookies(u, cookies)
}

func (p *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar.Cookies(u)
}

func (p *persistentJar) load(ctx context.Context) {
	if p.store == nil {
		return
	}
	raw, err := p.store.Get(ctx, ports.KeyCookies)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			p.logger.WarnContext(ctx, "failed to load saved cookies", "error", err)
		}
		return
	}
	var saved []savedCookie
	if err := json.Unmarshal(raw, &saved); err != nil {
		p.logger.WarnContext(ctx, "discarding unreadable saved cookies", "error", err)
		return
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.jar.SetCookies(p.base, cookies)
	p.last = string(raw)
}

// save writes the origin's cookies when they changed since the last load or save.
func (p *persistentJar) save(ctx context.Context) {
	if p.store == nil {
		return
	}
	p.mu.Lock()
	cookies := p.jar.Cookies(p.base)
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.Marshal(saved)
	if err != nil || string(raw) == p.last {
		p.mu.Unlock()
		return
	}
	p.last = string(raw)
	p.mu.Unlock()

	if len(saved) == 0 {
		err = p.store.Delete(ctx, ports.KeyCookies)
	} else {
		err = p.store.Set(ctx, ports.KeyCookies, raw)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "failed to persist cookies", "error", err)
	}
}

func (p *persistentJar) reset(ctx context.Context) error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.jar = jar
	p.last = "[]"
	p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	return p.store.Delete(ctx, ports.KeyCookies)
}
