// Package backend talks to the conversational AI session through the
// browser-automation bridge daemon. The bridge owns the Playwright session
// and the login cookie jar; this package only sends prompts and reads the
// plain-text replies.
package backend

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Backend is the collaborator interface the orchestrator drives. Ask blocks
// until the session produces a reply; there is no in-process cancellation.
// Reload refreshes the chat page and is called once at session start.
type Backend interface {
	Ask(prompt string) (string, error)
	Reload() error
}

// Bridge is an HTTP client for a local bridge daemon exposing the chat
// session. POST /ask takes the prompt as the request body and returns the
// reply text; POST /reload refreshes the page.
type Bridge struct {
	baseURL string
	client  *http.Client
}

// NewBridge returns a Bridge for the daemon at baseURL. The client carries
// no timeout: a reply can legitimately take minutes, and a stuck request is
// only ever resolved by killing the whole process.
func NewBridge(baseURL string) *Bridge {
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (b *Bridge) Ask(prompt string) (string, error) {
	resp, err := b.client.Post(b.baseURL+"/ask", "text/plain; charset=utf-8", strings.NewReader(prompt))
	if err != nil {
		return "", fmt.Errorf("bridge ask failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read bridge reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bridge ask returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return string(body), nil
}

func (b *Bridge) Reload() error {
	resp, err := b.client.Post(b.baseURL+"/reload", "text/plain; charset=utf-8", nil)
	if err != nil {
		return fmt.Errorf("bridge reload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge reload returned status %d", resp.StatusCode)
	}
	return nil
}
