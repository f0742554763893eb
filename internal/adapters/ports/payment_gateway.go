package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order identifies the purchase a transaction runs against
type Order struct {
	ID             string
	Amount         decimal.Decimal
	ConvenienceFee *decimal.Decimal // optional, omitted from the wire when nil
}

// CreditCard carries the card details for a sale, authorization, or profile operation
type CreditCard struct {
	CardType        string // gateway card_name, e.g. "Visa"
	Number          string
	ExpirationMonth int
	ExpirationYear  int // 2- or 4-digit
	CardHolder      string
	CVV2            string // omitted from the wire when empty
}

// BillingInfo carries the cardholder billing address
type BillingInfo struct {
	FirstName  string
	LastName   string
	Address1   string
	Address2   string // omitted when empty
	City       string
	State      string
	PostalCode string
	Country    string
	Email      string // omitted when empty
	Phone      string // omitted when empty
}

// ShippingInfo carries an optional shipping address for customer profiles
type ShippingInfo struct {
	Name       string
	Address1   string
	Address2   string
	City       string
	State      string
	PostalCode string
	Country    string
}

// TransactionOptions holds per-call routing overrides and extras.
// MID/TID/Processor and ProcessorID follow the same exclusivity rules as the
// adapter-level routing defaults.
type TransactionOptions struct {
	MID         string
	TID         string
	Processor   string
	ProcessorID string
	RemoteIP    string // omitted when empty
}

// RefundOptions holds the optional parameters of a refund
type RefundOptions struct {
	Amount  *decimal.Decimal // nil refunds the full captured amount
	Routing *TransactionOptions
}

// ProfileOptions holds the optional parameters of profile creation
type ProfileOptions struct {
	Routing *TransactionOptions
}

// CustomerCharge is one item of a batch charge upload
type CustomerCharge struct {
	ProfileID string
	OrderID   string
	Amount    decimal.Decimal
	Options   *TransactionOptions
}

// TransactionResult is the normalized outcome of a single-transaction call.
// Original always carries the full decoded gateway record for diagnostics.
type TransactionResult struct {
	TransactionID string // gateway reference_number
	AuthCode      string
	Original      map[string]string
}

// CustomerProfileResult is the outcome of a profile CRUD call
type CustomerProfileResult struct {
	ProfileID string
	Original  map[string]string
}

// SettledTransaction is one reconstructed row of a settled-batch query
type SettledTransaction struct {
	OrderID                        string
	Amount                         string
	AmountSettled                  string
	AmountCredited                 string
	Settled                        string
	TransTime                      string
	CardType                       string
	AuthResponse                   string
	CreditVoid                     string
	CardNumber                     string
	AuthCode                       string
	NameOnCard                     string
	CardExp                        string
	TransType                      string
	TransStatus                    string
	ReferenceNumber                string
	Recurring                      string
	BatchNumber                    string
	RecurringChild                 string
	RecurringParentReferenceNumber string
	RecurringParentOrderID         string
	PostedBy                       string
}

// SettledBatchResult is the outcome of a settled-batch query
type SettledBatchResult struct {
	TotalAmount   string
	TotalSettled  string
	TotalCredited string
	TotalNet      string
	RecordsFound  int
	Records       []SettledTransaction
	Original      map[string]string
}

// BatchUploadResult is the acknowledgement of a batch charge upload.
// Raw preserves all six pipe-delimited fields as received.
type BatchUploadResult struct {
	Status  string
	FileID  string
	Message string
	Raw     []string
}

// PaymentGateway defines the capability contract consumed by host applications.
// Every call is one blocking request/response round trip; implementations hold
// no mutable state, so concurrent use from multiple goroutines is safe.
// Failed calls return a *domain.GatewayError carrying the original payload.
type PaymentGateway interface {
	// SubmitTransaction runs a sale (auth + capture)
	SubmitTransaction(ctx context.Context, order Order, card CreditCard, billing BillingInfo, opts *TransactionOptions) (*TransactionResult, error)

	// AuthorizeTransaction runs an authorization without capture
	AuthorizeTransaction(ctx context.Context, order Order, card CreditCard, billing BillingInfo, opts *TransactionOptions) (*TransactionResult, error)

	// RefundTransaction refunds a settled transaction, optionally partially
	RefundTransaction(ctx context.Context, transactionID string, opts *RefundOptions) (*TransactionResult, error)

	// GetSettledBatchList queries settled transactions in [from, to].
	// A zero to means now. Long-running; callers should inject a client with
	// a generous timeout.
	GetSettledBatchList(ctx context.Context, from, to time.Time) (*SettledBatchResult, error)

	// CreateCustomerProfile stores a card and billing address with the gateway
	CreateCustomerProfile(ctx context.Context, card CreditCard, billing BillingInfo, shipping *ShippingInfo, opts *ProfileOptions) (*CustomerProfileResult, error)

	// EditCustomerProfile updates the stored card and/or billing address
	EditCustomerProfile(ctx context.Context, profileID string, card *CreditCard, billing *BillingInfo) (*CustomerProfileResult, error)

	// GetCustomerProfile fetches a stored profile
	GetCustomerProfile(ctx context.Context, profileID string) (*CustomerProfileResult, error)

	// DeleteCustomerProfile removes a stored profile
	DeleteCustomerProfile(ctx context.Context, profileID string) (*CustomerProfileResult, error)

	// ChargeCustomer charges a stored profile once
	ChargeCustomer(ctx context.Context, order Order, profileID string, opts *TransactionOptions) (*TransactionResult, error)

	// ChargeCustomers uploads a batch of profile charges and returns the
	// gateway's acknowledgement. Long-running, same timeout note as
	// GetSettledBatchList.
	ChargeCustomers(ctx context.Context, charges []CustomerCharge, opts *TransactionOptions) (*BatchUploadResult, error)
}
