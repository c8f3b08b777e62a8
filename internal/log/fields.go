package log

import "sort"

// Field names shared by every log record.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldReferer      = "referer"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldGoalID       = "goal_id"
	FieldTargetAmount = "target_amount"
	FieldFinalAmount  = "final_amount"
	FieldShortfall    = "shortfall"
	FieldAchievable   = "is_achievable"
	FieldMonths       = "months"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentGoal     = "goal"
	ComponentForecast = "forecast"
	ComponentTax      = "tax"
)

// Operations name what a handler was doing when it logged.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAnalyze  = "analyze"
	OpSnapshot = "snapshot"
	OpValidate = "validate"
	OpParse    = "parse"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError records err's message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithGoal(id, targetAmount int64) LogFields {
	f[FieldGoalID] = id
	f[FieldTargetAmount] = targetAmount
	return f
}

// WithAnalysis adds the outcome of a goal analysis
func (f LogFields) WithAnalysis(finalAmount, shortfall int64, achievable bool, months int) LogFields {
	f[FieldFinalAmount] = finalAmount
	f[FieldShortfall] = shortfall
	f[FieldAchievable] = achievable
	f[FieldMonths] = months
	return f
}

// WithHTTPRequest adds request fields. Empty query, user agent and referer
// are omitted.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	for k, v := range map[string]string{FieldQuery: query, FieldUserAgent: userAgent, FieldReferer: referer} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key/value arguments, sorted by key
// so records are stable.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
