package goemerchant

import (
	"testing"

	"github.com/fortepay/goemerchant-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse_FlattensFieldArray(t *testing.T) {
	body := `<RESPONSE><FIELDS>` +
		`<FIELD KEY="status">1</FIELD>` +
		`<FIELD KEY="auth_code">A12345</FIELD>` +
		`<FIELD KEY="reference_number">REF-9</FIELD>` +
		`</FIELDS></RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, FlatRecord{
		"status":           "1",
		"auth_code":        "A12345",
		"reference_number": "REF-9",
	}, record)
}

func TestDecodeResponse_AcceptsLowercaseKeyAttribute(t *testing.T) {
	body := `<RESPONSE><FIELDS><FIELD key="status">1</FIELD></FIELDS></RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "1", record["status"])
}

func TestDecodeResponse_MergesMultipleFieldsBlocks(t *testing.T) {
	body := `<RESPONSE>` +
		`<FIELDS><FIELD KEY="status">1</FIELD></FIELDS>` +
		`<FIELDS><FIELD KEY="auth_code">B777</FIELD></FIELDS>` +
		`</RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "1", record["status"])
	assert.Equal(t, "B777", record["auth_code"])
}

func TestDecodeResponse_CopiesScalarChildrenAndAttributes(t *testing.T) {
	// A FIELDS block may mix top-level scalars with the FIELD array.
	body := `<RESPONSE><FIELDS batch="42">` +
		`<records_found>2</records_found>` +
		`<FIELD KEY="status">1</FIELD>` +
		`</FIELDS></RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "2", record["records_found"])
	assert.Equal(t, "42", record["batch"])
	assert.Equal(t, "1", record["status"])
}

func TestDecodeResponse_ValuesAreVerbatim(t *testing.T) {
	body := `<RESPONSE><FIELDS>` +
		`<FIELD KEY="status">1</FIELD>` +
		`<FIELD KEY="error"> leading and trailing </FIELD>` +
		`</FIELDS></RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, " leading and trailing ", record["error"])
}

func TestDecodeResponse_StructuredFault(t *testing.T) {
	body := `<ErrorResponse><messages>` +
		`<message><text>Invalid gateway credentials</text></message>` +
		`<message><text>secondary detail</text></message>` +
		`</messages></ErrorResponse>`

	_, err := decodeResponse([]byte(body))
	require.Error(t, err)

	gwErr, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindStructuredFault, gwErr.Kind)
	assert.Equal(t, "Invalid gateway credentials", gwErr.Message)
	assert.NotNil(t, gwErr.Original, "fault subtree must travel with the error")
}

func TestDecodeResponse_MissingStatusIsMalformed(t *testing.T) {
	body := `<RESPONSE><FIELDS><FIELD KEY="auth_code">A1</FIELD></FIELDS></RESPONSE>`

	_, err := decodeResponse([]byte(body))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindMalformedResponse))

	gwErr, _ := domain.AsGatewayError(err)
	record, ok := gwErr.Original.(FlatRecord)
	require.True(t, ok)
	assert.Equal(t, "A1", record["auth_code"])
}

func TestDecodeResponse_Status1FamilySuffices(t *testing.T) {
	// Settled-batch queries return an indexed status family instead of a
	// plain status field.
	body := `<RESPONSE><FIELDS>` +
		`<FIELD KEY="status1">1</FIELD>` +
		`<FIELD KEY="records_found">1</FIELD>` +
		`</FIELDS></RESPONSE>`

	record, err := decodeResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "1", record["status1"])
}

func TestDecodeResponse_NotXMLIsMalformed(t *testing.T) {
	_, err := decodeResponse([]byte("ERROR: something went sideways"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindMalformedResponse))
}

func TestDecodeResponse_UnknownRootIsMalformed(t *testing.T) {
	_, err := decodeResponse([]byte(`<WRONG><FIELDS></FIELDS></WRONG>`))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindMalformedResponse))
}

func TestDecodeResponse_RoundTripWithEncoder(t *testing.T) {
	// Encoding a synthetic record and decoding the same shape back must
	// preserve every key/value pair.
	var fields fieldList
	fields.add("status", "1")
	fields.add("auth_code", "Z900")
	fields.add("owner_name", "Jo Tester")

	payload, err := encodeRequest(testConfig(), "RESPONSE", fields.fields)
	require.NoError(t, err)

	record, err := decodeResponse(payload)
	require.NoError(t, err)

	assert.Equal(t, "1", record["status"])
	assert.Equal(t, "Z900", record["auth_code"])
	assert.Equal(t, "Jo Tester", record["owner_name"])
	assert.Equal(t, "tc-1001", record["transaction_center_id"])
	assert.Equal(t, "gw-secret", record["gateway_id"])
}
