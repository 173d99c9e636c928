package insight

import (
	"context"

	"github.com/google/uuid"
)

// FactRepository loads the raw facts the engine computes over. Every
// method scopes its result to one tenant and one client; implementations
// must never leak rows across tenants.
type FactRepository interface {
	// InvoiceFacts returns the reporting set: CUSTOMER invoices that are
	// neither draft nor cancelled, with payment sums attached.
	InvoiceFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]InvoiceFact, error)

	// IssuedInvoiceFacts returns all non-draft CUSTOMER invoices, including
	// cancelled ones. The timeline shows cancelled invoices as issued events;
	// financial aggregation does not.
	IssuedInvoiceFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]InvoiceFact, error)

	// SaleFacts returns all sales linked to the client
	SaleFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]SaleFact, error)

	// PaymentFacts returns all payments applied to the client's non-draft
	// CUSTOMER invoices
	PaymentFacts(ctx context.Context, tenantID, clientID uuid.UUID) ([]PaymentFact, error)

	// ClientFact returns the client identity record, or nil (with no error)
	// when the client does not exist for the tenant
	ClientFact(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientFact, error)
}
