package goemerchant

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/fortepay/goemerchant-gateway/internal/domain"
)

// FlatRecord is the single-level string-keyed map produced by decoding one
// gateway response. Keys are case-sensitive and sourced verbatim from the wire.
type FlatRecord map[string]string

// Fault document shape: <ErrorResponse><messages><message><text>...</text>...
type faultMessage struct {
	Text string `xml:"text"`
}

type faultDocument struct {
	XMLName  xml.Name `xml:"ErrorResponse"`
	Messages struct {
		Message []faultMessage `xml:"message"`
	} `xml:"messages"`
}

// Response envelope shape: <RESPONSE><FIELDS>...</FIELDS>...</RESPONSE>.
// A FIELDS block may mix top-level scalar children with a FIELD array; the
// catch-all Extra slice collects the non-FIELD children.
type responseField struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Value string     `xml:",chardata"`
}

type responseExtra struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type responseFieldsBlock struct {
	Attrs  []xml.Attr      `xml:",any,attr"`
	Fields []responseField `xml:"FIELD"`
	Extra  []responseExtra `xml:",any"`
}

type responseEnvelope struct {
	XMLName xml.Name              `xml:"RESPONSE"`
	Blocks  []responseFieldsBlock `xml:"FIELDS"`
}

// rootElementName returns the local name of the document's root element
func rootElementName(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// decodeResponse parses a gateway XML response into a flat record.
//
// Two error shapes are detected: a structured fault document
// (StructuredFault, carrying the first fault message and the fault subtree)
// and a record that matches neither the fault nor a recognized response
// shape (MalformedResponse). Business failures (status == "0") are the
// caller's responsibility; decoding itself is pure and never retries.
func decodeResponse(body []byte) (FlatRecord, error) {
	root, err := rootElementName(body)
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindMalformedResponse,
			"response is not well-formed XML", err).WithOriginal(string(body))
	}

	if root == "ErrorResponse" {
		var fault faultDocument
		if err := xml.Unmarshal(body, &fault); err != nil {
			return nil, domain.WrapGatewayError(domain.KindMalformedResponse,
				"fault document could not be parsed", err).WithOriginal(string(body))
		}
		message := "gateway returned a fault"
		if len(fault.Messages.Message) > 0 {
			message = fault.Messages.Message[0].Text
		}
		return nil, domain.NewGatewayError(domain.KindStructuredFault, message).WithOriginal(fault)
	}

	var envelope responseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, domain.WrapGatewayError(domain.KindMalformedResponse,
			"response envelope could not be parsed", err).WithOriginal(string(body))
	}

	record := make(FlatRecord)
	for _, block := range envelope.Blocks {
		for _, attr := range block.Attrs {
			record[attr.Name.Local] = attr.Value
		}
		for _, extra := range block.Extra {
			record[extra.XMLName.Local] = extra.Value
		}
		for _, field := range block.Fields {
			if key, ok := fieldKey(field); ok {
				record[key] = field.Value
			}
		}
	}

	// Single-transaction responses carry status; settled-batch queries carry
	// an indexed status1 family. Anything with neither is unrecognized.
	if _, ok := record["status"]; !ok {
		if _, ok := record["status1"]; !ok {
			return nil, domain.NewGatewayError(domain.KindMalformedResponse,
				"can not parse answer from gateway").WithOriginal(record)
		}
	}

	return record, nil
}

// fieldKey finds the FIELD key attribute. The gateway is inconsistent about
// attribute casing (key on requests, KEY on responses), so match either.
func fieldKey(field responseField) (string, bool) {
	for _, attr := range field.Attrs {
		if strings.EqualFold(attr.Name.Local, "key") {
			return attr.Value, true
		}
	}
	return "", false
}
