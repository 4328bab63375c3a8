// Package respond writes JSON responses and turns domain errors into HTTP
// statuses with a localized message.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads the request body into dst and validates it. On failure it
// writes the error response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		p := printerFor(r)
		JSON(w, http.StatusBadRequest, errorBody{Error: codeBadRequest, Message: p.Sprintf(codeBadRequest)})

		return false
	}

	if err := validate.Struct(dst); err != nil {
		Error(w, r, err)
		return false
	}

	return true
}

// BadRequest reports a malformed path or query parameter.
func BadRequest(w http.ResponseWriter, r *http.Request, param string) {
	p := printerFor(r)
	JSON(w, http.StatusBadRequest, errorBody{
		Error:   codeBadRequest,
		Message: p.Sprintf(codeBadRequest),
		Fields:  map[string]string{param: "invalid"},
	})
}

// Unauthorized rejects a request that carries no usable bearer token.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	p := printerFor(r)
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	JSON(w, http.StatusUnauthorized, errorBody{Error: codeUnauthorized, Message: p.Sprintf(codeUnauthorized)})
}

// Error writes the response for err. Errors that do not map to a client
// mistake are logged and answered with a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	p := printerFor(r)

	var (
		stockErr *stock.InsufficientStockError
		fieldErr *validation.Error
		vErrs    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &vErrs):
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fe.Field()] = fe.Tag()
		}

		JSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   codeValidation,
			Message: p.Sprintf(codeValidation),
			Fields:  fields,
		})
	case errors.As(err, &fieldErr):
		body := errorBody{Error: codeValidation, Message: p.Sprintf(codeValidation)}
		if fieldErr.Field != "" {
			body.Fields = map[string]string{fieldErr.Field: fieldErr.Message}
		}

		JSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, numbering.ErrInvalidPOS):
		JSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   codeValidation,
			Message: p.Sprintf(codeValidation),
			Fields:  map[string]string{"pos": p.Sprintf(codeInvalidPOS)},
		})
	case errors.Is(err, invoice.ErrNotFound):
		writeCode(w, p, http.StatusNotFound, codeInvoiceNotFound)
	case errors.Is(err, stock.ErrProductNotFound):
		writeCode(w, p, http.StatusNotFound, codeProductNotFound)
	case errors.Is(err, client.ErrNotFound):
		writeCode(w, p, http.StatusNotFound, codeClientNotFound)
	case errors.Is(err, invoice.ErrInvalidState):
		writeCode(w, p, http.StatusConflict, codeInvalidState)
	case errors.Is(err, invoice.ErrMissingClient):
		writeCode(w, p, http.StatusUnprocessableEntity, codeMissingClient)
	case errors.Is(err, invoice.ErrEmptyInvoice):
		writeCode(w, p, http.StatusUnprocessableEntity, codeEmptyInvoice)
	case errors.Is(err, numbering.ErrAllocationFailed):
		writeCode(w, p, http.StatusServiceUnavailable, codeAllocationFailed)
	case errors.Is(err, invoice.ErrIssuanceFailed):
		writeCode(w, p, http.StatusInternalServerError, codeIssuanceFailed)
	case errors.As(err, &stockErr):
		JSON(w, http.StatusConflict, errorBody{
			Error:   codeInsufficientStock,
			Message: p.Sprintf(codeInsufficientStock, stockErr.Name, stockErr.Requested, stockErr.Available),
		})
	case errors.Is(err, stock.ErrDuplicateSKU):
		writeCode(w, p, http.StatusConflict, codeDuplicateSKU)
	case errors.Is(err, client.ErrDuplicateDocument):
		writeCode(w, p, http.StatusConflict, codeDuplicateDocument)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeCode(w, p, http.StatusInternalServerError, codeInternal)
	}
}

func writeCode(w http.ResponseWriter, p printer, status int, code string) {
	JSON(w, status, errorBody{Error: code, Message: p.Sprintf(code)})
}
