package domain

// x-callback-url wire vocabulary.
const (
	// PrefixXCU marks keys reserved by the x-callback-url convention.
	PrefixXCU = "x-"
	// Host is the URL host every protocol URL carries.
	Host = "x-callback-url"

	KeySource  = "x-source"
	KeySuccess = "x-success"
	KeyError   = "x-error"
	KeyCancel  = "x-cancel"

	KeyErrorCode    = "error-Code"
	KeyErrorMessage = "errorMessage"
)

// Keys owned by this engine on top of x-callback-url.
const (
	// PrefixProtocol marks keys used for request/response correlation.
	PrefixProtocol = "IAC"

	// ResponseAction is the reserved action name of every response URL.
	ResponseAction = "IACRequestResponse"

	KeyRequestID    = "IACRequestID"
	KeyResponseType = "IACResponseType"
	KeyErrorDomain  = "errorDomain"
)

// Error domains carried in errorDomain.
const (
	ManagerErrorDomain = "xcallback.manager.error"
	ClientErrorDomain  = "xcallback.client.error"
)

// DefaultAppName is reported as x-source when the host cannot name the app.
const DefaultAppName = "xcallback"
