package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/xcallback/pkg/query"
)

// Request is an outgoing action call.
type Request struct {
	ID     string
	Scheme string
	Action string
	Params query.Pairs

	// Handler receives the response. A nil handler makes the request
	// fire-and-forget: no callback URLs are attached.
	Handler ResultHandler

	// NormalizeCode interprets the error-Code of a failure response.
	// Defaults to ParseErrorCode.
	NormalizeCode func(string) int
}

// ErrorCode interprets a raw error-Code with the request's hook.
func (r *Request) ErrorCode(raw string) int {
	if r.NormalizeCode != nil {
		return r.NormalizeCode(raw)
	}
	return ParseErrorCode(raw)
}

// ParseErrorCode reads a decimal error code, returning 0 when it is absent or malformed.
func ParseErrorCode(raw string) int {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return code
}

// PendingRecord is the serializable view of a request awaiting its response.
type PendingRecord struct {
	ID        string    `json:"id"`
	Scheme    string    `json:"scheme"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Record returns the pending record for r.
func (r *Request) Record(now time.Time) PendingRecord {
	return PendingRecord{
		ID:        r.ID,
		Scheme:    r.Scheme,
		Action:    r.Action,
		CreatedAt: now,
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
