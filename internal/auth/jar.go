package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cookieFileName = "cookies.json"

// Jar is a persistent cookie jar scoped to the backend origin. The refresh
// credential arrives as an HTTP-only cookie; persisting it keeps the silent
// refresh flow working across CLI invocations.
type Jar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	path  string
	base  *url.URL
	saved map[string]storedCookie
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// NewJar builds a Jar persisted under stateDir for the given backend URL.
func NewJar(stateDir, baseURL string) (*Jar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("build cookie jar: %w", err)
	}

	jar := &Jar{
		inner: inner,
		path:  filepath.Join(stateDir, cookieFileName),
		base:  base,
		saved: map[string]storedCookie{},
	}
	if err := jar.load(); err != nil {
		return nil, err
	}
	return jar, nil
}

// SetCookies records response cookies and persists the surviving set.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	if u.Host != j.base.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	for _, cookie := range cookies {
		expired := cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && cookie.Expires.Before(now))
		if expired || cookie.Value == "" {
			delete(j.saved, cookie.Name)
			continue
		}
		expires := cookie.Expires
		if cookie.MaxAge > 0 {
			expires = now.Add(time.Duration(cookie.MaxAge) * time.Second)
		}
		j.saved[cookie.Name] = storedCookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Expires:  expires,
			Secure:   cookie.Secure,
			HTTPOnly: cookie.HttpOnly,
		}
	}
	if err := j.persistLocked(); err != nil {
		// Losing the snapshot only costs a future silent refresh.
		_ = err
	}
}

// Cookies returns cookies applicable to the request URL.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Clear drops every persisted cookie.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.saved = map[string]storedCookie{}
	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cookie snapshot: %w", err)
	}
	return nil
}

func (j *Jar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cookie snapshot: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode cookie snapshot: %w", err)
	}

	now := time.Now()
	restored := make([]*http.Cookie, 0, len(stored))
	for _, cookie := range stored {
		if !cookie.Expires.IsZero() && cookie.Expires.Before(now) {
			continue
		}
		j.saved[cookie.Name] = cookie
		restored = append(restored, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HTTPOnly,
		})
	}
	if len(restored) > 0 {
		j.inner.SetCookies(j.base, restored)
	}
	return nil
}

func (j *Jar) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("ensure cookie directory: %w", err)
	}

	cookies := make([]storedCookie, 0, len(j.saved))
	for _, cookie := range j.saved {
		cookies = append(cookies, cookie)
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookie snapshot: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie snapshot: %w", err)
	}
	return nil
}
