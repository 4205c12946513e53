package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type SameSite int

const (
	SameSiteDefaultMode SameSite = iota + 1
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

const maxCookieValue = 4096

var (
	ErrNoCookie      = errors.New("http: named cookie not present")
	ErrInvalidCookie = errors.New("http: invalid cookie")
)

type Cookie struct {
	Name  string
	Value string

	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

// String renders the cookie as a Set-Cookie header value.
func (c *Cookie) String() string {
	var b strings.Builder

	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	}

	// negative means delete now
	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	} else if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}

	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	switch c.SameSite {
	case SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}

	return b.String()
}

func (c *Cookie) Valid() error {
	if c.Name == "" {
		return errors.Wrap(ErrInvalidCookie, "empty name")
	}
	for _, r := range c.Name {
		if !isCookieNameChar(r) {
			return errors.Wrapf(ErrInvalidCookie, "character %q in name", r)
		}
	}
	if len(c.Value) > maxCookieValue {
		return errors.Wrapf(ErrInvalidCookie, "value of %d bytes", len(c.Value))
	}
	if c.SameSite == SameSiteNoneMode && !c.Secure {
		return errors.Wrap(ErrInvalidCookie, "SameSite=None without Secure")
	}
	return nil
}

func isCookieNameChar(r rune) bool {
	return r > 0x20 && r < 0x7f && !strings.ContainsRune("\"(),/:;<=>?@[\\]{}", r)
}

// Cookies parses the request's Cookie header. Pairs without a name are
// skipped.
func (req *Request) Cookies() []*Cookie {
	header, found := req.Headers["cookie"]
	if !found {
		return nil
	}

	var cookies []*Cookie
	for _, part := range strings.Split(header, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		if name == "" {
			continue
		}
		cookies = append(cookies, &Cookie{Name: name, Value: value})
	}
	return cookies
}

func (req *Request) Cookie(name string) (*Cookie, error) {
	for _, cookie := range req.Cookies() {
		if cookie.Name == name {
			return cookie, nil
		}
	}
	return nil, ErrNoCookie
}

// SetCookie adds a Set-Cookie header. Each cookie gets its own line.
func (res *Response) SetCookie(cookie *Cookie) error {
	if err := cookie.Valid(); err != nil {
		return err
	}

	res.Headers.Add("Set-Cookie", cookie.String())
	return nil
}
