// Package classify decides what to do with each raw backend reply: accept
// it, back off and resubmit, skip the document, or declare the session
// dead. This is the control core of the tool; everything else is plumbing
// around it.
package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/textworks/chat-extract/pkg/backend"
)

// Reply sentinels. These are literal strings the backend session produces
// and must match its output exactly.
const (
	// rateLimitSentinel is the whole reply when the session hits an HTTP
	// 429 upstream.
	rateLimitSentinel = "HTTP Error 429: Too many requests"

	// degradedMarker appears when the wrapper could not read a usable
	// reply out of the page.
	degradedMarker = "unusable response produced by chatgpt"

	// refusalMarker appears when the model declines to map the document
	// onto the schema at all.
	refusalMarker = "it is not possible to generate a json representation of the provided text"
)

// Kind is the classification of a single raw reply.
type Kind int

const (
	// Accepted replies carry a usable (if not necessarily parseable) answer.
	Accepted Kind = iota
	// Degraded replies are unusable; the same prompt is resubmitted after
	// a backoff.
	Degraded
	// Refused replies state the document cannot be represented as JSON.
	// Terminal for the document, not for the session.
	Refused
	// RateLimited replies are the 429 sentinel.
	RateLimited
	// Incomplete replies contain no closing brace, which means the output
	// stream was cut short. This failure mode recurs until the session is
	// restarted.
	Incomplete
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Degraded:
		return "degraded"
	case Refused:
		return "refused"
	case RateLimited:
		return "rate_limited"
	case Incomplete:
		return "incomplete"
	}
	return "unknown"
}

// Classify maps one raw reply to its Kind. Marker matching is
// case-insensitive; the rate-limit sentinel is an exact match on the
// trimmed reply.
func Classify(reply string) Kind {
	lower := strings.ToLower(reply)

	if strings.Contains(lower, degradedMarker) {
		return Degraded
	}
	if strings.Contains(lower, refusalMarker) {
		return Refused
	}
	if strings.TrimSpace(reply) == rateLimitSentinel {
		return RateLimited
	}
	if !strings.Contains(reply, "}") {
		return Incomplete
	}
	return Accepted
}

// AbortError means the backend session is unusable and the whole process
// must exit so an external supervisor can restart it. The orchestrator
// never recovers from it in-process.
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return "session abort: " + e.Reason
}

// Abort reasons.
const (
	ReasonRateLimited   = "rate limit sleep finished, session presumed stale"
	ReasonWaitExhausted = "exceeded max wait states for a single document"
	ReasonIncomplete    = "backend is not returning complete JSON"
)

// Outcome is the terminal, non-fatal result of exchanging one document.
// Kind is Accepted or Refused. Prompt is the prompt actually answered
// (resubmissions reuse the original, so today it is always the input
// prompt).
type Outcome struct {
	Kind     Kind
	Prompt   string
	Response string
}

// Machine runs the per-document retry loop against a backend session.
type Machine struct {
	Backend backend.Backend

	// Backoff is the degraded-reply backoff unit; attempt n sleeps
	// n*Backoff before resubmitting.
	Backoff time.Duration

	// RateLimitSleep is slept after a 429 sentinel before the session is
	// aborted.
	RateLimitSleep time.Duration

	// MaxWaitStates bounds submissions per document; one past it aborts
	// the session.
	MaxWaitStates int

	// Sleep is swappable for tests. Defaults to time.Sleep.
	Sleep func(time.Duration)

	Logger *slog.Logger
}

func (m *Machine) sleep(d time.Duration) {
	if m.Sleep != nil {
		m.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (m *Machine) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// Exchange submits prompt and loops until it reaches a terminal outcome.
// Degraded replies sleep a linearly growing backoff and resubmit the same
// prompt; the other non-accepted kinds either end the document (Refused)
// or the session (AbortError). Transport errors from the backend are
// session-fatal and returned as-is.
func (m *Machine) Exchange(prompt string) (Outcome, error) {
	log := m.logger()
	waited := 0

	for {
		response, err := m.Backend.Ask(prompt)
		if err != nil {
			return Outcome{}, fmt.Errorf("backend request failed: %w", err)
		}

		if waited == 0 {
			log.Info("prompt sent", "prompt_bytes", len(prompt))
			log.Debug("exchange", "prompt", prompt, "response", response)
		}

		waited++
		if waited > m.MaxWaitStates {
			return Outcome{}, &AbortError{Reason: ReasonWaitExhausted}
		}

		switch kind := Classify(response); kind {
		case Degraded:
			wait := time.Duration(waited) * m.Backoff
			log.Warn("degraded reply, backing off", "attempt", waited, "wait", wait)
			m.sleep(wait)

		case Refused:
			log.Info("backend refused document, keeping reply for audit")
			return Outcome{Kind: Refused, Prompt: prompt, Response: response}, nil

		case RateLimited:
			log.Warn("rate limited, sleeping before abort", "sleep", m.RateLimitSleep)
			m.sleep(m.RateLimitSleep)
			return Outcome{}, &AbortError{Reason: ReasonRateLimited}

		case Incomplete:
			return Outcome{}, &AbortError{Reason: ReasonIncomplete}

		default:
			return Outcome{Kind: Accepted, Prompt: prompt, Response: response}, nil
		}
	}
}

// ParseFenced extracts the first triple-backtick fenced block from an
// accepted reply and parses it as JSON. A missing fence or malformed JSON
// is a recoverable per-document failure, not a session problem.
func ParseFenced(response string) (any, error) {
	segments := strings.Split(response, "```")
	if len(segments) < 2 {
		return nil, fmt.Errorf("no fenced block in response")
	}

	var data any
	if err := json.Unmarshal([]byte(segments[1]), &data); err != nil {
		return nil, fmt.Errorf("failed to parse fenced JSON: %w", err)
	}
	return data, nil
}
