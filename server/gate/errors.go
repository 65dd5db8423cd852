package gate

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/google/uuid"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// StatusError lets a handler choose the status and message of its failure.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewStatusError(status int, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

// WriteError translates a handler error into a JSON response. Unclassified errors become
// a 500 carrying an opaque request id; the stack is only included in dev mode.
func WriteError(w http.ResponseWriter, r *http.Request, err error, devMode bool) {
	writeError(w, r, err, devMode, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, devMode bool, stack []byte) {
	var statusErr *StatusError
	if autherrors.As(err, &statusErr) {
		writeJSON(w, statusErr.Status, errorBody{Error: statusErr.Message})
		return
	}
	if autherrors.Is(err, autherrors.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if status, msg, ok := providerInputError(err); ok {
		writeJSON(w, status, errorBody{Error: msg})
		return
	}

	requestID := uuid.NewString()
	log.Error().Err(err).
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("unhandled error")

	body := errorBody{Error: "internal server error", RequestID: requestID}
	if devMode {
		if stack == nil {
			stack = debug.Stack()
		}
		body.Stack = string(stack)
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

// providerInputError maps identity provider input-validation failures.
func providerInputError(err error) (int, string, bool) {
	var notFound *types.UserNotFoundException
	if autherrors.As(err, &notFound) {
		return http.StatusNotFound, notFound.ErrorMessage(), true
	}
	var invalidPassword *types.InvalidPasswordException
	if autherrors.As(err, &invalidPassword) {
		return http.StatusBadRequest, invalidPassword.ErrorMessage(), true
	}
	var exists *types.UsernameExistsException
	if autherrors.As(err, &exists) {
		return http.StatusBadRequest, exists.ErrorMessage(), true
	}
	var invalidParam *types.InvalidParameterException
	if autherrors.As(err, &invalidParam) {
		return http.StatusBadRequest, invalidParam.ErrorMessage(), true
	}
	return 0, "", false
}

// Recover converts a panic in next into a 500 through the error translator.
func Recover(devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					writeError(w, r, fmt.Errorf("panic: %v", rec), devMode, debug.Stack())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
