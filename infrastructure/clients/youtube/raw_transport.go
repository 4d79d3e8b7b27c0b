package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type rawBodyKey struct{}

// rawBody receives the undecoded body of a successful response.
type rawBody struct {
	data []byte
}

func withRawBody(ctx context.Context) (context.Context, *rawBody) {
	rec := &rawBody{}
	return context.WithValue(ctx, rawBodyKey{}, rec), rec
}

// recordingTransport copies the response body into the rawBody carried by
// the request context, if any, and hands an identical body to the caller.
type recordingTransport struct {
	base http.RoundTripper
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	rec, ok := req.Context().Value(rawBodyKey{}).(*rawBody)
	if !ok || resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	rec.data = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func wrapTransport(client *http.Client) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = &recordingTransport{base: base}
	return &wrapped
}

// items splits a recorded list response into its item objects, untouched.
func (r *rawBody) items(want int) ([]json.RawMessage, error) {
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(r.data, &list); err != nil {
		return nil, fmt.Errorf("failed to split raw items: %w", err)
	}
	if len(list.Items) != want {
		return nil, fmt.Errorf("raw response has %d items, decoded %d", len(list.Items), want)
	}
	return list.Items, nil
}

// topLevelComment returns the raw snippet.topLevelComment of a raw thread.
func topLevelComment(thread json.RawMessage) json.RawMessage {
	var t struct {
		Snippet struct {
			TopLevelComment json.RawMessage `json:"topLevelComment"`
		} `json:"snippet"`
	}
	if err := json.Unmarshal(thread, &t); err != nil {
		return nil
	}
	return t.Snippet.TopLevelComment
}
