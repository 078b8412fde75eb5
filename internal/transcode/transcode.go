// Package transcode turns an upstream HTTP response into a generic JSON value
// that can be re-serialized unchanged in meaning.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tbourn/verproxy/internal/apperr"
)

// DefaultMaxBodyBytes bounds how much of an upstream body is buffered.
const DefaultMaxBodyBytes int64 = 5 << 20

var errBodyTooLarge = errors.New("upstream body exceeds limit")

// JSON reads the whole body of resp and decodes it into a generic value.
// Numbers are kept as json.Number so integers round-trip without float
// rounding. The body is always closed.
//
// A failure reading the body yields apperr.HTTPExtern; a body that is not
// exactly one valid JSON document yields apperr.JSONDecode. The upstream
// status code is not inspected beyond a warning log.
func JSON(ctx context.Context, resp *http.Response, maxBytes int64) (any, error) {
	if resp == nil || resp.Body == nil {
		return nil, apperr.Erase(ctx, apperr.HTTPExtern, errors.New("nil upstream response"), "read upstream body")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		zerolog.Ctx(ctx).Warn().
			Int("upstream_status", resp.StatusCode).
			Msg("upstream returned error status; relaying body")
	}

	raw, err := readAll(resp.Body, maxBytes)
	if err != nil {
		return nil, apperr.Erase(ctx, apperr.HTTPExtern, err, "read upstream body")
	}
	return Decode(ctx, raw)
}

// Decode parses one JSON document from raw.
func Decode(ctx context.Context, raw []byte) (any, error) {
	if !json.Valid(raw) {
		return nil, apperr.Erase(ctx, apperr.JSONDecode, syntaxError(raw), "decode upstream body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.Erase(ctx, apperr.JSONDecode, err, "decode upstream body")
	}
	return v, nil
}

func readAll(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errBodyTooLarge, maxBytes)
	}
	return raw, nil
}

// syntaxError recovers the decoder's diagnostic for an invalid document so
// the log carries an offset, not just "invalid".
func syntaxError(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty body")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return errors.New("trailing data after JSON value")
}
