package payment

import "net/http"

type ResultKind string

const (
	Success         ResultKind = "success"
	ValidationError ResultKind = "validation_error"
	NetworkError    ResultKind = "network_error"
	Conflict        ResultKind = "conflict"
	NotFound        ResultKind = "not_found"
)

// Result is the outcome of a payment or approval action. Handlers map it to
// UI state instead of relying on side effects.
type Result struct {
	Kind        ResultKind        `json:"kind"`
	Message     string            `json:"message"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	PaymentID   string            `json:"payment_id,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

func (r Result) OK() bool { return r.Kind == Success }

func Succeeded(paymentID, msg string) Result {
	return Result{Kind: Success, PaymentID: paymentID, Message: msg}
}

func Invalid(msg string, fields map[string]string) Result {
	return Result{Kind: ValidationError, Message: msg, Fields: fields}
}

func Failed(msg string) Result { return Result{Kind: NetworkError, Message: msg} }

func Conflicted(msg string) Result { return Result{Kind: Conflict, Message: msg} }

func Missing(msg string) Result { return Result{Kind: NotFound, Message: msg} }

// HTTPStatus maps the result kind onto a status code. Validation failures
// use 400 for JSON clients; HTML forms use 422.
func (r Result) HTTPStatus() int {
	switch r.Kind {
	case Success:
		return http.StatusOK
	case ValidationError:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
