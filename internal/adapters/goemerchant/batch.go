package goemerchant

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/fortepay/goemerchant-gateway/internal/domain"
	"github.com/google/uuid"
)

// batchItem is one transaction intent of a batch upload: its routing fields
// (already resolved per-item) followed by its business fields.
type batchItem struct {
	fields []Field
}

// BatchAck is the gateway's pipe-delimited batch-upload acknowledgement.
// Exactly six fields arrive on the wire; positions 0-2 are consumed and 3-5
// are preserved only in Raw.
type BatchAck struct {
	Status  string
	FileID  string
	Message string
	Raw     []string
}

// encodeBatchDocument renders the batch upload XML: root transactions,
// one transaction child per item carrying a 1-based transaction_sequence_num
// ahead of the item's fields. The gateway's batch parser wants each element
// on its own line but tolerates no indentation, so this is "pretty" mode
// with an empty indent string and real newlines.
func encodeBatchDocument(items []batchItem) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteString("<transactions>\n")
	for i, item := range items {
		buf.WriteString("<transaction>\n")
		writeBatchElement(&buf, "transaction_sequence_num", strconv.Itoa(i+1))
		for _, f := range item.fields {
			writeBatchElement(&buf, f.Key, f.Value)
		}
		buf.WriteString("</transaction>\n")
	}
	buf.WriteString("</transactions>\n")
	return buf.Bytes()
}

func writeBatchElement(buf *bytes.Buffer, name, value string) {
	buf.WriteString("<" + name + ">")
	// name comes from our own field vocabulary; only the value needs escaping
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + name + ">\n")
}

// decodeBatchAck splits the raw acknowledgement line on the pipe character.
// Anything other than exactly six fields is a MalformedResponse carrying the
// split fields for diagnostics.
func decodeBatchAck(body string) (*BatchAck, error) {
	parts := strings.Split(strings.TrimSpace(body), "|")
	if len(parts) != 6 {
		return nil, domain.NewGatewayError(domain.KindMalformedResponse,
			fmt.Sprintf("batch acknowledgement has %d fields, want 6", len(parts))).
			WithOriginal(parts)
	}
	return &BatchAck{
		Status:  parts[0],
		FileID:  parts[1],
		Message: parts[2],
		Raw:     parts,
	}, nil
}

// submitBatch uploads an encoded batch document as a multipart form POST.
// The non-file fields are the resolved credential/routing fields plus
// operation_type=upload; the file part carries the batch XML under the
// supplied filename, or a generated one when empty.
func (a *Adapter) submitBatch(ctx context.Context, fields []Field, fileContent []byte, filename string) (*BatchAck, error) {
	if filename == "" {
		filename = fmt.Sprintf("batch-%s.xml", uuid.NewString())
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := writer.WriteField(f.Key, f.Value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.Key, err)
		}
	}
	if err := writer.WriteField("operation_type", "upload"); err != nil {
		return nil, fmt.Errorf("failed to write operation_type field: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		return nil, fmt.Errorf("failed to write batch document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BatchEndpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindTransportFailure,
			"batch upload failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindTransportFailure,
			"failed to read batch acknowledgement", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewGatewayError(domain.KindTransportFailure,
			fmt.Sprintf("batch endpoint returned status %d", resp.StatusCode)).
			WithOriginal(string(body))
	}

	return decodeBatchAck(string(body))
}
