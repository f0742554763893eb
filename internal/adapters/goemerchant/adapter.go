package goemerchant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fortepay/goemerchant-gateway/internal/adapters/ports"
	"github.com/fortepay/goemerchant-gateway/internal/domain"
	"github.com/fortepay/goemerchant-gateway/pkg/observability"
	"github.com/fortepay/goemerchant-gateway/pkg/security"
)

// Adapter implements the ports.PaymentGateway contract against the
// GoEmerchant keyed-XML gateway. It holds no mutable state beyond the
// immutable Config, so concurrent use is safe; every operation is one HTTP
// POST composed with decoding, with no internal retries. Payment operations
// must not be duplicated without explicit caller intent.
type Adapter struct {
	config     Config
	httpClient ports.HTTPClient
	logger     ports.Logger
}

// NewAdapter creates a gateway adapter with injected collaborators.
// The config is validated once here; endpoints default to production.
func NewAdapter(cfg Config, httpClient ports.HTTPClient, logger ports.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{
		config:     cfg.withDefaults(),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewAdapterWithDefaults creates an adapter with a default HTTP client.
// Batch uploads and settled-batch queries are long-running; callers needing
// more than the default timeout should inject their own client.
func NewAdapterWithDefaults(cfg Config, logger ports.Logger) (*Adapter, error) {
	return NewAdapter(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
}

var _ ports.PaymentGateway = (*Adapter)(nil)

// sendTransactionRequest encodes the fields into the TRANSACTION envelope,
// performs the POST, and decodes the response. A well-formed response with
// status "0" is a business failure carrying the gateway's error field and
// the full record.
func (a *Adapter) sendTransactionRequest(ctx context.Context, operation string, fields []Field) (FlatRecord, error) {
	payload, err := encodeRequest(a.config, "TRANSACTION", fields)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	record, err := a.post(ctx, payload)
	elapsed := time.Since(start)

	if err != nil {
		observability.ObserveGatewayRequest(operation, outcomeForError(err), elapsed)
		a.logger.Error("gateway request failed",
			ports.String("operation", operation),
			ports.Duration("elapsed", elapsed),
			ports.Err(err),
		)
		return nil, err
	}

	if record["status"] == "0" {
		observability.ObserveGatewayRequest(operation, observability.OutcomeDeclined, elapsed)
		a.logger.Warn("gateway rejected operation",
			ports.String("operation", operation),
			ports.String("gateway_error", record["error"]),
		)
		return nil, domain.NewGatewayError(domain.KindBusinessFailure, record["error"]).
			WithOriginal(map[string]string(record))
	}

	observability.ObserveGatewayRequest(operation, observability.OutcomeSuccess, elapsed)
	a.logger.Info("gateway request completed",
		ports.String("operation", operation),
		ports.Duration("elapsed", elapsed),
	)
	return record, nil
}

// post performs one XML POST round trip and decodes the body
func (a *Adapter) post(ctx context.Context, payload []byte) (FlatRecord, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/xml")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindTransportFailure,
			"failed to reach gateway", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindTransportFailure,
			"failed to read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewGatewayError(domain.KindTransportFailure,
			fmt.Sprintf("gateway returned status %d", resp.StatusCode)).
			WithOriginal(string(body))
	}

	return decodeResponse(body)
}

func outcomeForError(err error) string {
	switch {
	case domain.IsKind(err, domain.KindStructuredFault):
		return observability.OutcomeFault
	case domain.IsKind(err, domain.KindMalformedResponse):
		return observability.OutcomeMalformed
	default:
		return observability.OutcomeTransport
	}
}

// SubmitTransaction runs a sale (auth + capture)
func (a *Adapter) SubmitTransaction(ctx context.Context, order ports.Order, card ports.CreditCard, billing ports.BillingInfo, opts *ports.TransactionOptions) (*ports.TransactionResult, error) {
	return a.payment(ctx, "sale", order, card, billing, opts)
}

// AuthorizeTransaction runs an authorization without capture
func (a *Adapter) AuthorizeTransaction(ctx context.Context, order ports.Order, card ports.CreditCard, billing ports.BillingInfo, opts *ports.TransactionOptions) (*ports.TransactionResult, error) {
	return a.payment(ctx, "auth", order, card, billing, opts)
}

// payment assembles and sends a sale or auth body; the two operations share
// every field except operation_type.
func (a *Adapter) payment(ctx context.Context, operationType string, order ports.Order, card ports.CreditCard, billing ports.BillingInfo, opts *ports.TransactionOptions) (*ports.TransactionResult, error) {
	if order.ID == "" {
		return nil, domain.NewValidationError("order.id", "must be provided")
	}
	if card.CardType == "" {
		return nil, domain.NewValidationError("card.card_type", "must be provided")
	}

	routing, err := resolveRouting(a.config.Routing, routingFromOptions(opts))
	if err != nil {
		return nil, err
	}

	a.logger.Debug("submitting card payment",
		ports.String("operation", operationType),
		ports.String("order_id", order.ID),
		ports.String("card_number", security.MaskPAN(card.Number)),
	)

	var fields fieldList
	fields.add("operation_type", operationType)
	fields.add("total", order.Amount.StringFixed(2))
	fields.add("order_id", order.ID)
	if order.ConvenienceFee != nil {
		fields.add("conv_fee", order.ConvenienceFee.StringFixed(2))
	}
	fields.add("card_name", card.CardType)
	fields.add("card_number", card.Number)
	fields.add("card_exp", formatCardExpiration(card.ExpirationMonth, card.ExpirationYear))
	fields.addNonEmpty("ccv2", card.CVV2)
	fields.add("owner_name", ownerName(card, billing))
	fields.add("owner_street", billing.Address1)
	fields.addNonEmpty("owner_street2", billing.Address2)
	fields.add("owner_city", billing.City)
	fields.add("owner_state", billing.State)
	fields.add("owner_zip", billing.PostalCode)
	fields.add("owner_country", billing.Country)
	fields.addNonEmpty("owner_email", billing.Email)
	fields.addNonEmpty("owner_phone", billing.Phone)
	if opts != nil {
		fields.addNonEmpty("remote_ip_address", opts.RemoteIP)
	}
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, operationType, fields.fields)
	if err != nil {
		return nil, err
	}
	return transactionResult(record), nil
}

// RefundTransaction refunds a settled transaction, optionally partially
func (a *Adapter) RefundTransaction(ctx context.Context, transactionID string, opts *ports.RefundOptions) (*ports.TransactionResult, error) {
	if transactionID == "" {
		return nil, domain.NewValidationError("transaction_id", "must be provided")
	}

	var routingOpts *ports.TransactionOptions
	if opts != nil {
		routingOpts = opts.Routing
	}
	routing, err := resolveRouting(a.config.Routing, routingFromOptions(routingOpts))
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", "refund")
	fields.add("reference_number", transactionID)
	if opts != nil && opts.Amount != nil {
		fields.add("total", opts.Amount.StringFixed(2))
	}
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, "refund", fields.fields)
	if err != nil {
		return nil, err
	}
	return transactionResult(record), nil
}

// settledFieldNames is the suffixed family a settled-batch query response
// flattens each row into
var settledFieldNames = []string{
	"order_id", "amount", "amount_settled", "amount_credited", "settled",
	"trans_time", "card_type", "auth_response", "credit_void", "card_num",
	"auth_code", "name_on_card", "card_exp", "trans_type", "trans_status",
	"reference_number", "recurring", "batch_number", "recurring_child",
	"recurring_parent_reference_number", "recurring_parent_order_id",
	"posted_by",
}

// GetSettledBatchList queries settled transactions in [from, to]
func (a *Adapter) GetSettledBatchList(ctx context.Context, from, to time.Time) (*ports.SettledBatchResult, error) {
	if from.IsZero() {
		return nil, domain.NewValidationError("from", "from date must be specified")
	}
	if to.IsZero() {
		to = time.Now()
	}

	routing, err := resolveRouting(a.config.Routing, Routing{})
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", "query")
	fields.add("trans_type", "ALL")
	fields.add("begin_date", from.Format("010206"))
	fields.add("end_date", to.Format("010206"))
	fields.add("settled", "1")
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, "query", fields.fields)
	if err != nil {
		return nil, err
	}

	count, err := strconv.Atoi(record["records_found"])
	if err != nil {
		return nil, domain.WrapGatewayError(domain.KindMalformedResponse,
			"records_found is not numeric", err).WithOriginal(map[string]string(record))
	}

	rows := unflattenRecords(record, count, settledFieldNames, nil)
	records := make([]ports.SettledTransaction, len(rows))
	for i, row := range rows {
		records[i] = settledTransaction(row)
	}

	return &ports.SettledBatchResult{
		TotalAmount:   record["total_amount"],
		TotalSettled:  record["total_settled"],
		TotalCredited: record["total_credited"],
		TotalNet:      record["total_net"],
		RecordsFound:  count,
		Records:       records,
		Original:      record,
	}, nil
}

// CreateCustomerProfile stores a card and billing address with the gateway
func (a *Adapter) CreateCustomerProfile(ctx context.Context, card ports.CreditCard, billing ports.BillingInfo, shipping *ports.ShippingInfo, opts *ports.ProfileOptions) (*ports.CustomerProfileResult, error) {
	if card.CardType == "" {
		return nil, domain.NewValidationError("card.card_type", "must be provided")
	}

	var routingOpts *ports.TransactionOptions
	if opts != nil {
		routingOpts = opts.Routing
	}
	routing, err := resolveRouting(a.config.Routing, routingFromOptions(routingOpts))
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", "add_customer")
	addCardFields(&fields, card)
	addBillingFields(&fields, billing)
	if shipping != nil {
		fields.add("ship_name", shipping.Name)
		fields.add("ship_street", shipping.Address1)
		fields.addNonEmpty("ship_street2", shipping.Address2)
		fields.add("ship_city", shipping.City)
		fields.add("ship_state", shipping.State)
		fields.add("ship_zip", shipping.PostalCode)
		fields.add("ship_country", shipping.Country)
	}
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, "add_customer", fields.fields)
	if err != nil {
		return nil, err
	}
	return profileResult(record), nil
}

// EditCustomerProfile updates the stored card and/or billing address
func (a *Adapter) EditCustomerProfile(ctx context.Context, profileID string, card *ports.CreditCard, billing *ports.BillingInfo) (*ports.CustomerProfileResult, error) {
	if profileID == "" {
		return nil, domain.NewValidationError("profile_id", "must be provided")
	}

	routing, err := resolveRouting(a.config.Routing, Routing{})
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", "edit_customer")
	fields.add("cust_id", profileID)
	if card != nil {
		addCardFields(&fields, *card)
	}
	if billing != nil {
		addBillingFields(&fields, *billing)
	}
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, "edit_customer", fields.fields)
	if err != nil {
		return nil, err
	}
	return profileResult(record), nil
}

// GetCustomerProfile fetches a stored profile
func (a *Adapter) GetCustomerProfile(ctx context.Context, profileID string) (*ports.CustomerProfileResult, error) {
	return a.profileOperation(ctx, "query_customer", profileID)
}

// DeleteCustomerProfile removes a stored profile
func (a *Adapter) DeleteCustomerProfile(ctx context.Context, profileID string) (*ports.CustomerProfileResult, error) {
	return a.profileOperation(ctx, "delete_customer", profileID)
}

func (a *Adapter) profileOperation(ctx context.Context, operationType, profileID string) (*ports.CustomerProfileResult, error) {
	if profileID == "" {
		return nil, domain.NewValidationError("profile_id", "must be provided")
	}

	routing, err := resolveRouting(a.config.Routing, Routing{})
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", operationType)
	fields.add("cust_id", profileID)
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, operationType, fields.fields)
	if err != nil {
		return nil, err
	}
	return profileResult(record), nil
}

// ChargeCustomer charges a stored profile once
func (a *Adapter) ChargeCustomer(ctx context.Context, order ports.Order, profileID string, opts *ports.TransactionOptions) (*ports.TransactionResult, error) {
	if order.ID == "" {
		return nil, domain.NewValidationError("order.id", "must be provided")
	}
	if profileID == "" {
		return nil, domain.NewValidationError("profile_id", "must be provided")
	}

	routing, err := resolveRouting(a.config.Routing, routingFromOptions(opts))
	if err != nil {
		return nil, err
	}

	var fields fieldList
	fields.add("operation_type", "charge_customer")
	fields.add("cust_id", profileID)
	fields.add("order_id", order.ID)
	fields.add("total", order.Amount.StringFixed(2))
	if order.ConvenienceFee != nil {
		fields.add("conv_fee", order.ConvenienceFee.StringFixed(2))
	}
	if opts != nil {
		fields.addNonEmpty("remote_ip_address", opts.RemoteIP)
	}
	fields.append(routing)

	record, err := a.sendTransactionRequest(ctx, "charge_customer", fields.fields)
	if err != nil {
		return nil, err
	}
	return transactionResult(record), nil
}

// ChargeCustomers uploads a batch of profile charges and decodes the
// acknowledgement. Routing is resolved at per-item granularity; the form
// fields carry the credentials and the batch-level routing.
func (a *Adapter) ChargeCustomers(ctx context.Context, charges []ports.CustomerCharge, opts *ports.TransactionOptions) (*ports.BatchUploadResult, error) {
	if len(charges) == 0 {
		return nil, domain.NewValidationError("charges", "at least one charge must be provided")
	}

	items := make([]batchItem, len(charges))
	for i, charge := range charges {
		if charge.ProfileID == "" {
			return nil, domain.NewValidationError("charges", fmt.Sprintf("charge %d: profile id must be provided", i+1))
		}
		if charge.OrderID == "" {
			return nil, domain.NewValidationError("charges", fmt.Sprintf("charge %d: order id must be provided", i+1))
		}

		routing, err := resolveRouting(a.config.Routing, routingFromOptions(charge.Options))
		if err != nil {
			return nil, err
		}

		var fields fieldList
		fields.append(routing)
		fields.add("operation_type", "charge_customer")
		fields.add("cust_id", charge.ProfileID)
		fields.add("order_id", charge.OrderID)
		fields.add("total", charge.Amount.StringFixed(2))
		items[i] = batchItem{fields: fields.fields}
	}

	document := encodeBatchDocument(items)

	batchRouting, err := resolveRouting(a.config.Routing, routingFromOptions(opts))
	if err != nil {
		return nil, err
	}
	var formFields fieldList
	formFields.add("transaction_center_id", a.config.TransactionCenterID)
	formFields.add("gateway_id", a.config.GatewayID)
	formFields.append(batchRouting)

	start := time.Now()
	ack, err := a.submitBatch(ctx, formFields.fields, document, "")
	elapsed := time.Since(start)

	if err != nil {
		observability.ObserveGatewayRequest("batch_upload", outcomeForError(err), elapsed)
		a.logger.Error("batch upload failed",
			ports.Int("charges", len(charges)),
			ports.Duration("elapsed", elapsed),
			ports.Err(err),
		)
		return nil, err
	}

	observability.ObserveGatewayRequest("batch_upload", observability.OutcomeSuccess, elapsed)
	a.logger.Info("batch upload acknowledged",
		ports.Int("charges", len(charges)),
		ports.String("file_id", ack.FileID),
		ports.String("status", ack.Status),
		ports.Duration("elapsed", elapsed),
	)

	return &ports.BatchUploadResult{
		Status:  ack.Status,
		FileID:  ack.FileID,
		Message: ack.Message,
		Raw:     ack.Raw,
	}, nil
}

// Helpers

// formatCardExpiration renders MMYY: the month zero-padded to two digits,
// the year reduced to its last two digits regardless of 2- or 4-digit input
func formatCardExpiration(month, year int) string {
	return fmt.Sprintf("%02d%02d", month, year%100)
}

// ownerName prefers the embossed cardholder name over the billing name
func ownerName(card ports.CreditCard, billing ports.BillingInfo) string {
	if card.CardHolder != "" {
		return card.CardHolder
	}
	name := billing.FirstName
	if billing.LastName != "" {
		if name != "" {
			name += " "
		}
		name += billing.LastName
	}
	return name
}

func addCardFields(fields *fieldList, card ports.CreditCard) {
	fields.add("card_name", card.CardType)
	fields.add("card_number", card.Number)
	fields.add("card_exp", formatCardExpiration(card.ExpirationMonth, card.ExpirationYear))
	fields.addNonEmpty("ccv2", card.CVV2)
}

func addBillingFields(fields *fieldList, billing ports.BillingInfo) {
	fields.add("owner_name", ownerName(ports.CreditCard{}, billing))
	fields.add("owner_street", billing.Address1)
	fields.addNonEmpty("owner_street2", billing.Address2)
	fields.add("owner_city", billing.City)
	fields.add("owner_state", billing.State)
	fields.add("owner_zip", billing.PostalCode)
	fields.add("owner_country", billing.Country)
	fields.addNonEmpty("owner_email", billing.Email)
	fields.addNonEmpty("owner_phone", billing.Phone)
}

func routingFromOptions(opts *ports.TransactionOptions) Routing {
	if opts == nil {
		return Routing{}
	}
	return Routing{
		MID:         opts.MID,
		TID:         opts.TID,
		Processor:   opts.Processor,
		ProcessorID: opts.ProcessorID,
	}
}

func transactionResult(record FlatRecord) *ports.TransactionResult {
	return &ports.TransactionResult{
		TransactionID: record["reference_number"],
		AuthCode:      record["auth_code"],
		Original:      record,
	}
}

func profileResult(record FlatRecord) *ports.CustomerProfileResult {
	return &ports.CustomerProfileResult{
		ProfileID: record["cust_id"],
		Original:  record,
	}
}

func settledTransaction(row FlatRecord) ports.SettledTransaction {
	return ports.SettledTransaction{
		OrderID:                        row["order_id"],
		Amount:                         row["amount"],
		AmountSettled:                  row["amount_settled"],
		AmountCredited:                 row["amount_credited"],
		Settled:                        row["settled"],
		TransTime:                      row["trans_time"],
		CardType:                       row["card_type"],
		AuthResponse:                   row["auth_response"],
		CreditVoid:                     row["credit_void"],
		CardNumber:                     row["card_num"],
		AuthCode:                       row["auth_code"],
		NameOnCard:                     row["name_on_card"],
		CardExp:                        row["card_exp"],
		TransType:                      row["trans_type"],
		TransStatus:                    row["trans_status"],
		ReferenceNumber:                row["reference_number"],
		Recurring:                      row["recurring"],
		BatchNumber:                    row["batch_number"],
		RecurringChild:                 row["recurring_child"],
		RecurringParentReferenceNumber: row["recurring_parent_reference_number"],
		RecurringParentOrderID:         row["recurring_parent_order_id"],
		PostedBy:                       row["posted_by"],
	}
}
