package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("client not found")
	ErrDuplicateDocument = errors.New("a client with this document already exists")
)

// DocType is the kind of identity document a client is registered with.
type DocType string

const (
	DocDNI  DocType = "DNI"
	DocCUIT DocType = "CUIT"
	DocCUIL DocType = "CUIL"
	DocNone DocType = "SD" // sin documento
)

// IVACondition is the client's VAT registration status.
type IVACondition string

const (
	IVAFinalConsumer IVACondition = "CF"
	IVARegistered    IVACondition = "RI"
	IVAMonotributo   IVACondition = "MONOTRIBUTO"
	IVAExempt        IVACondition = "EXENTO"
)

func (c IVACondition) Valid() bool {
	switch c {
	case IVAFinalConsumer, IVARegistered, IVAMonotributo, IVAExempt:
		return true
	}

	return false
}

type Client struct {
	ID           uuid.UUID
	TenantID     string
	Name         string
	DocType      DocType
	DocNumber    string
	IVACondition IVACondition
	Email        string
	Phone        string
	Address      string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
