package goemerchant

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Field is one ordered key/value pair of a gateway request
type Field struct {
	Key   string
	Value string
}

// fieldList builds an ordered field sequence with an explicit "drop absent"
// rule: optional values are only appended when present, never as empty
// placeholders for nil.
type fieldList struct {
	fields []Field
}

func (l *fieldList) add(key, value string) {
	l.fields = append(l.fields, Field{Key: key, Value: value})
}

// addOpt appends the field only when the value is present. A non-nil empty
// string is still a value and is encoded as such.
func (l *fieldList) addOpt(key string, value *string) {
	if value == nil {
		return
	}
	l.add(key, *value)
}

// addNonEmpty appends the field only when the value is non-empty, for caller
// inputs where the empty string means "not supplied"
func (l *fieldList) addNonEmpty(key, value string) {
	if value == "" {
		return
	}
	l.add(key, value)
}

func (l *fieldList) append(fields []Field) {
	l.fields = append(l.fields, fields...)
}

// Request envelope wire structures: <ROOT><FIELDS><FIELD key="k">v</FIELD>...
type requestField struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type requestFields struct {
	Field []requestField `xml:"FIELD"`
}

type requestEnvelope struct {
	XMLName xml.Name
	Fields  requestFields `xml:"FIELDS"`
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// encodeRequest wraps the ordered fields into the gateway's keyed-XML
// envelope. The transaction-center credentials are always the first two
// FIELD entries; caller fields follow in the order supplied.
func encodeRequest(cfg Config, rootTag string, fields []Field) ([]byte, error) {
	envelope := requestEnvelope{
		XMLName: xml.Name{Local: rootTag},
		Fields: requestFields{
			Field: make([]requestField, 0, len(fields)+2),
		},
	}

	envelope.Fields.Field = append(envelope.Fields.Field,
		requestField{Key: "transaction_center_id", Value: cfg.TransactionCenterID},
		requestField{Key: "gateway_id", Value: cfg.GatewayID},
	)
	for _, f := range fields {
		envelope.Fields.Field = append(envelope.Fields.Field, requestField{Key: f.Key, Value: f.Value})
	}

	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := xml.NewEncoder(&buf).Encode(envelope); err != nil {
		return nil, fmt.Errorf("failed to encode request envelope: %w", err)
	}
	return buf.Bytes(), nil
}
