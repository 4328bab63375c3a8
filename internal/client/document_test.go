package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

func TestNormalizeDocNumber(t *testing.T) {
	assert.Equal(t, "30123456", client.NormalizeDocNumber(" 30.123.456 "))
	assert.Equal(t, "20123456786", client.NormalizeDocNumber("20-12345678-6"))
	assert.Equal(t, "", client.NormalizeDocNumber("  "))
}

func TestValidateDocument(t *testing.T) {
	type testCase struct {
		name    string
		docType client.DocType
		number  string
		wantErr bool
	}

	tests := []testCase{
		{name: "DNIEightDigits", docType: client.DocDNI, number: "30123456"},
		{name: "DNISevenDigits", docType: client.DocDNI, number: "9123456"},
		{name: "DNITooShort", docType: client.DocDNI, number: "123456", wantErr: true},
		{name: "DNINotNumeric", docType: client.DocDNI, number: "30A23456", wantErr: true},
		{name: "CUITValid", docType: client.DocCUIT, number: "20123456786"},
		{name: "CUITValidCompany", docType: client.DocCUIT, number: "30712345671"},
		{name: "CUITBadCheckDigit", docType: client.DocCUIT, number: "30712345678", wantErr: true},
		{name: "CUITWrongLength", docType: client.DocCUIT, number: "2012345678", wantErr: true},
		{name: "CUILValid", docType: client.DocCUIL, number: "20123456786"},
		{name: "NoDocument", docType: client.DocNone, number: ""},
		{name: "NoDocumentWithNumber", docType: client.DocNone, number: "123", wantErr: true},
		{name: "UnknownType", docType: client.DocType("PASSPORT"), number: "AB123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateDocument(tt.docType, tt.number)
			if tt.wantErr {
				assert.ErrorIs(t, err, validation.ErrInvalid)
				return
			}

			assert.NoError(t, err)
		})
	}
}
