package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeResponse is a canned reply for FakeProvider.
type FakeResponse struct {
	Content json.RawMessage
	Text    string
	Usage   Usage
	Err     error
}

// FakeProvider replays canned responses in FIFO order and records every
// request. Structured content is still checked against the request's
// schema, so tests see the same validation failures as real providers.
type FakeProvider struct {
	mu        sync.Mutex
	responses []FakeResponse
	Calls     []Request
}

func NewFakeProvider(responses ...FakeResponse) *FakeProvider {
	return &FakeProvider{responses: responses}
}

func (f *FakeProvider) Generate(_ context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, req)
	if len(f.responses) == 0 {
		return nil, &Error{Kind: ErrUnavailable, Provider: "fake"}
	}

	resp := f.responses[0]
	f.responses = f.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}

	if req.Schema != nil {
		if verr := validateResponse(req.Schema, resp.Content); verr != nil {
			verr.Provider = "fake"
			verr.Usage = resp.Usage
			return nil, verr
		}
	}

	return &Response{
		Content:    resp.Content,
		Text:       resp.Text,
		Usage:      resp.Usage,
		Model:      "fake",
		StopReason: "end",
	}, nil
}

func (f *FakeProvider) Name() string    { return "fake" }
func (f *FakeProvider) ModelID() string { return "fake" }

// AddResponse queues another reply.
func (f *FakeProvider) AddResponse(resp FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
}

func (f *FakeProvider) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
