package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/avcore/goplay/internal/errors"
)

// httpContainer streams an HTTP(S) URL, re-issuing the GET with a Range
// header on Seek when the server advertised Accept-Ranges: bytes on the
// initial response.
type httpContainer struct {
	ctx        context.Context
	url        string
	client     *http.Client
	body       io.ReadCloser
	pos        int64
	size       int64
	rangeable  bool
}

func openHTTP(ctx context.Context, rawURL string) (Container, error) {
	client := &http.Client{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.KindInput, "source.open_http", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.New(errors.KindInput, "source.open_http", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errors.New(errors.KindInput, "source.open_http", fmt.Errorf("http status %d", resp.StatusCode))
	}
	return &httpContainer{
		ctx:       ctx,
		url:       rawURL,
		client:    client,
		body:      resp.Body,
		size:      resp.ContentLength,
		rangeable: resp.Header.Get("Accept-Ranges") == "bytes",
	}, nil
}

func (h *httpContainer) Read(p []byte) (int, error) {
	n, err := h.body.Read(p)
	h.pos += int64(n)
	return n, err
}

func (h *httpContainer) Close() error { return h.body.Close() }

func (h *httpContainer) Seek(offset int64, whence int) (int64, error) {
	if !h.rangeable {
		return 0, errors.New(errors.KindInput, "source.http_seek", fmt.Errorf("server does not support byte ranges"))
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = h.pos + offset
	case io.SeekEnd:
		target = h.size + offset
	default:
		return 0, errors.New(errors.KindInput, "source.http_seek", fmt.Errorf("invalid whence %d", whence))
	}

	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return 0, errors.New(errors.KindInput, "source.http_seek", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", target))
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, errors.New(errors.KindInput, "source.http_seek", err)
	}
	if resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return 0, errors.New(errors.KindInput, "source.http_seek", fmt.Errorf("server refused range request: status %d", resp.StatusCode))
	}
	h.body.Close()
	h.body = resp.Body
	h.pos = target
	return target, nil
}

func (h *httpContainer) Seekable() bool { return h.rangeable }
func (h *httpContainer) Realtime() bool { return !h.rangeable }
