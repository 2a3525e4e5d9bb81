package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// URL is a source downloaded with a Client.
type URL struct {
	client  *Client
	url     string
	headers http.Header
}

// NewURL returns a source for rawURL. headers may be nil.
func NewURL(c *Client, rawURL string, headers http.Header) *URL {
	return &URL{client: c, url: rawURL, headers: headers}
}

// Name is the unescaped last path segment, so
// ".../Inventario%20POS%202.csv?x=1" yields "Inventario POS 2.csv".
func (u *URL) Name() string { return NameFromURL(u.url) }

// Open downloads the file. Any status outside 2xx is an error.
func (u *URL) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := u.client.Get(ctx, u.url, u.headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: unexpected status %s", u.url, resp.Status)
	}
	return resp.Body, nil
}

// NameFromURL derives a file name from a URL path. It falls back to the host
// when the path is empty and to the raw string when it does not parse.
func NameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}
	if s, err := url.PathUnescape(base); err == nil {
		return s
	}
	return base
}
