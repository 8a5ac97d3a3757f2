package domain

import "strings"

// Parameters are the string-keyed values carried by a URL query.
type Parameters map[string]string

// WithoutProtocolKeys returns a copy without reserved keys.
// x-source survives; other "x-" and "IAC" keys are dropped.
func (p Parameters) WithoutProtocolKeys() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		if k == KeySource || (!strings.HasPrefix(k, PrefixXCU) && !strings.HasPrefix(k, PrefixProtocol)) {
			out[k] = v
		}
	}
	return out
}

// ResultKind is the outcome discriminator. Its integer value is the wire
// value of IACResponseType.
type ResultKind int

const (
	KindSuccess ResultKind = iota
	KindFailure
	KindCancelled
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the three known outcomes.
func (k ResultKind) Valid() bool {
	return k >= KindSuccess && k <= KindCancelled
}

// CallbackKey returns the x-callback-url parameter that addresses this outcome.
func (k ResultKind) CallbackKey() string {
	switch k {
	case KindSuccess:
		return KeySuccess
	case KindCancelled:
		return KeyCancel
	default:
		return KeyError
	}
}

// Result is the outcome of one request: success with data, failure with an
// error, or cancellation.
type Result struct {
	Kind ResultKind
	Data Parameters
	Err  *Error
}

// Success returns a successful result carrying data.
func Success(data Parameters) Result {
	if data == nil {
		data = Parameters{}
	}
	return Result{Kind: KindSuccess, Data: data}
}

// Failure returns a failed result.
func Failure(err *Error) Result {
	return Result{Kind: KindFailure, Err: err}
}

// Cancelled returns a cancellation result.
func Cancelled() Result {
	return Result{Kind: KindCancelled}
}

// Payload returns the query items appended to a callback URL for this result.
func (r Result) Payload() Parameters {
	switch r.Kind {
	case KindSuccess:
		return r.Data
	case KindFailure:
		err := r.Err
		if err == nil {
			err = &Error{Domain: ClientErrorDomain}
		}
		return Parameters{
			KeyErrorCode:    itoa(err.Code),
			KeyErrorMessage: err.Message,
			KeyErrorDomain:  err.Domain,
		}
	default:
		return nil
	}
}

// ResultHandler receives the outcome of a request.
type ResultHandler func(Result)
