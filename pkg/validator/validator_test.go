package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type currencyBody struct {
	Code  string          `json:"code" validate:"required,len=3"`
	Label string          `json:"label" validate:"required,max=100"`
	Rate  decimal.Decimal `json:"usd_exchange_rate" validate:"dgte0"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(currencyBody{Code: "EUR", Label: "Euro", Rate: decimal.RequireFromString("1.08")})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(currencyBody{Code: "EURO", Rate: decimal.NewFromInt(1)})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	fields := ve.Fields()
	assert.Equal(t, "must be exactly 3 characters", fields["code"])
	assert.Equal(t, "is required", fields["label"])
}

func TestValidate_NegativeDecimal(t *testing.T) {
	err := Validate(currencyBody{Code: "EUR", Label: "Euro", Rate: decimal.NewFromInt(-1)})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must not be negative", ve.Fields()["usd_exchange_rate"])
	assert.Contains(t, err.Error(), "usd_exchange_rate")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/currencies",
		strings.NewReader(`{"code":"EUR","label":"Euro","usd_exchange_rate":"1.08"}`))

	var body currencyBody
	require.NoError(t, DecodeAndValidate(req, &body))
	assert.Equal(t, "EUR", body.Code)
	assert.True(t, body.Rate.Equal(decimal.RequireFromString("1.08")))
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"EUR","label":"Euro","colour":"red"}`))

	var body currencyBody
	err := DecodeAndValidate(req, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	var body currencyBody
	err := DecodeAndValidate(req, &body)
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}
