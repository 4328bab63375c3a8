package respond

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeValidation        = "validation_failed"
	codeInvalidPOS        = "invalid_pos"
	codeInvoiceNotFound   = "invoice_not_found"
	codeProductNotFound   = "product_not_found"
	codeClientNotFound    = "client_not_found"
	codeInvalidState      = "invalid_state"
	codeMissingClient     = "missing_client"
	codeEmptyInvoice      = "empty_invoice"
	codeInsufficientStock = "insufficient_stock"
	codeDuplicateSKU      = "duplicate_sku"
	codeDuplicateDocument = "duplicate_document"
	codeAllocationFailed  = "allocation_failed"
	codeIssuanceFailed    = "issuance_failed"
	codeInternal          = "internal_error"
)

// Spanish first: it is the fallback when Accept-Language matches nothing.
var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.Spanish: {
		codeBadRequest:        "La solicitud no es válida.",
		codeUnauthorized:      "Token de acceso ausente, inválido o vencido.",
		codeValidation:        "Los datos enviados no son válidos.",
		codeInvalidPOS:        "El punto de venta debe tener entre 1 y 5 dígitos.",
		codeInvoiceNotFound:   "La factura no existe.",
		codeProductNotFound:   "El producto no existe.",
		codeClientNotFound:    "El cliente no existe.",
		codeInvalidState:      "La factura no admite esta operación en su estado actual.",
		codeMissingClient:     "La factura no tiene cliente asignado.",
		codeEmptyInvoice:      "La factura no tiene ítems.",
		codeInsufficientStock: "Stock insuficiente para %q: solicitado %d, disponible %d.",
		codeDuplicateSKU:      "Ya existe un producto con ese SKU.",
		codeDuplicateDocument: "Ya existe un cliente con ese documento.",
		codeAllocationFailed:  "No se pudo asignar un número de factura. Intente nuevamente.",
		codeIssuanceFailed:    "No se pudo emitir la factura. No se realizaron cambios.",
		codeInternal:          "Error interno del servidor.",
	},
	language.English: {
		codeBadRequest:        "The request is malformed.",
		codeUnauthorized:      "Missing, invalid or expired access token.",
		codeValidation:        "The submitted data is invalid.",
		codeInvalidPOS:        "The point of sale must have between 1 and 5 digits.",
		codeInvoiceNotFound:   "Invoice not found.",
		codeProductNotFound:   "Product not found.",
		codeClientNotFound:    "Client not found.",
		codeInvalidState:      "The invoice does not allow this operation in its current status.",
		codeMissingClient:     "The invoice has no client.",
		codeEmptyInvoice:      "The invoice has no items.",
		codeInsufficientStock: "Insufficient stock for %q: requested %d, available %d.",
		codeDuplicateSKU:      "A product with this SKU already exists.",
		codeDuplicateDocument: "A client with this document already exists.",
		codeAllocationFailed:  "Could not allocate an invoice number. Please retry.",
		codeIssuanceFailed:    "The invoice could not be issued. Nothing was changed.",
		codeInternal:          "Internal server error.",
	},
}

func init() {
	for tag, msgs := range catalog {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

type printer interface {
	Sprintf(key message.Reference, a ...any) string
}

func printerFor(r *http.Request) printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	_, idx, _ := matcher.Match(tags...)

	return message.NewPrinter(supported[idx])
}
