package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/leofalp/pitchlens/providers/observability"
)

// StatusError is returned for responses outside the 2xx range. It satisfies
// the retry classifier's HTTPStatus interface, so a 429 is retried and every
// other status is fatal.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(e.Body, 200))
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// Send executes req, reads the whole body and closes it. Request and response
// events are added to the span found in ctx. A non-2xx status yields a
// *StatusError together with the response.
func Send(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, req.URL.String()),
			observability.Int64(observability.AttrHTTPRequestBodySize, req.ContentLength),
		)
	}

	timer := NewTimer()
	res, err := httpClient.Do(req.WithContext(ctx))
	timer.Stop()
	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
			)
		}
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", req.URL.String())
		}
	}(res.Body)

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponse,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(body)),
			observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, body, &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}
	return res, body, nil
}

// DoPostSync POSTs body as JSON with an optional Bearer token and decodes the
// JSON response into OutputStruct.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*http.Response, *OutputStruct, error) {
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}

	res, data, err := PostJSON(ctx, client, url, header, body)
	if err != nil {
		return res, nil, err
	}

	var out OutputStruct
	if err := json.Unmarshal(data, &out); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateStringDefault(string(data)))
	}
	return res, &out, nil
}

// PostJSON POSTs body as JSON with the given extra headers and returns the
// raw response body.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, body any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")

	return Send(ctx, client, req)
}

// FilePart is the file of a multipart upload.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

// PostMultipart POSTs a multipart/form-data body made of the form fields and
// file, and returns the raw response body.
func PostMultipart(ctx context.Context, client *http.Client, url string, header http.Header, fields map[string]string, file FilePart) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, nil, fmt.Errorf("error writing field %q: %w", name, err)
		}
	}
	if file.Content != nil {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, nil, fmt.Errorf("error copying file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return Send(ctx, client, req)
}

// Get performs a GET with the given extra headers and returns the raw body.
func Get(ctx context.Context, client *http.Client, url string, header http.Header) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	copyHeader(req.Header, header)
	return Send(ctx, client, req)
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// DefaultTimeout is used by providers that create their own HTTP client.
const DefaultTimeout = 120 * time.Second
