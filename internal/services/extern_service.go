package services

import (
	"context"
	"net/http"

	"github.com/tbourn/verproxy/internal/apperr"
	"github.com/tbourn/verproxy/internal/transcode"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ExternService relays a fixed external JSON document.
type ExternService struct {
	// URL is the endpoint fetched on every call.
	URL string
	// MaxBodyBytes caps the buffered upstream body; <= 0 uses the
	// transcoder default.
	MaxBodyBytes int64
}

// Fetch performs a GET against s.URL with client and returns the decoded
// body. The upstream status is not inspected: a 404 with a JSON body is
// relayed like a 200.
//
// Errors:
//   - apperr.HTTPExtern when the request cannot be built or sent, or the body
//     cannot be read.
//   - apperr.JSONDecode when the body is not valid JSON.
func (s ExternService) Fetch(ctx context.Context, client HTTPDoer) (any, error) {
	if client == nil {
		return nil, apperr.Erase(ctx, apperr.HTTPExtern, ErrNoClient, "extern fetch")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, apperr.Erase(ctx, apperr.HTTPExtern, err, "build extern request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Erase(ctx, apperr.HTTPExtern, err, "extern request")
	}
	return transcode.JSON(ctx, resp, s.MaxBodyBytes)
}
