package goemerchant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		TransactionCenterID: "tc-1001",
		GatewayID:           "gw-secret",
	}.withDefaults()
}

func TestEncodeRequest_CredentialsComeFirst(t *testing.T) {
	var fields fieldList
	fields.add("operation_type", "sale")
	fields.add("total", "42.00")

	payload, err := encodeRequest(testConfig(), "TRANSACTION", fields.fields)
	require.NoError(t, err)

	xml := string(payload)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, "<TRANSACTION><FIELDS>")

	tcIdx := strings.Index(xml, `<FIELD key="transaction_center_id">tc-1001</FIELD>`)
	gwIdx := strings.Index(xml, `<FIELD key="gateway_id">gw-secret</FIELD>`)
	opIdx := strings.Index(xml, `<FIELD key="operation_type">sale</FIELD>`)
	totalIdx := strings.Index(xml, `<FIELD key="total">42.00</FIELD>`)

	require.NotEqual(t, -1, tcIdx)
	require.NotEqual(t, -1, gwIdx)
	require.NotEqual(t, -1, opIdx)
	require.NotEqual(t, -1, totalIdx)

	assert.Less(t, tcIdx, gwIdx, "transaction_center_id must be the first field")
	assert.Less(t, gwIdx, opIdx, "credentials must precede caller fields")
	assert.Less(t, opIdx, totalIdx, "caller fields must keep their supplied order")
}

func TestEncodeRequest_AbsentFieldsAreDropped(t *testing.T) {
	var fields fieldList
	fields.add("order_id", "ord-1")
	fields.addOpt("conv_fee", nil)
	fields.addNonEmpty("ccv2", "")
	fields.addNonEmpty("owner_email", "jo@example.com")

	payload, err := encodeRequest(testConfig(), "TRANSACTION", fields.fields)
	require.NoError(t, err)

	xml := string(payload)
	assert.NotContains(t, xml, "conv_fee")
	assert.NotContains(t, xml, "ccv2")
	assert.Contains(t, xml, `<FIELD key="owner_email">jo@example.com</FIELD>`)
}

func TestEncodeRequest_EmptyStringIsStillAValue(t *testing.T) {
	// An explicitly supplied empty value is encoded; only absent values are dropped.
	var fields fieldList
	fields.add("owner_street", "")

	payload, err := encodeRequest(testConfig(), "TRANSACTION", fields.fields)
	require.NoError(t, err)

	assert.Contains(t, string(payload), `<FIELD key="owner_street"></FIELD>`)
}

func TestEncodeRequest_EscapesFieldValues(t *testing.T) {
	var fields fieldList
	fields.add("owner_name", `O'Brien & Sons <LLC>`)

	payload, err := encodeRequest(testConfig(), "TRANSACTION", fields.fields)
	require.NoError(t, err)

	xml := string(payload)
	assert.Contains(t, xml, "O&#39;Brien &amp; Sons &lt;LLC&gt;")
	assert.NotContains(t, xml, "& Sons <LLC>")
}

func TestEncodeRequest_RootTagVaries(t *testing.T) {
	payload, err := encodeRequest(testConfig(), "CUSTOMER", nil)
	require.NoError(t, err)

	xml := string(payload)
	assert.Contains(t, xml, "<CUSTOMER>")
	assert.Contains(t, xml, "</CUSTOMER>")
}
