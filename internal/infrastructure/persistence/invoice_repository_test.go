package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_FindByNumber(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "1000", issue)

	invoice, err := repo.FindByNumber(ctx, tenantID, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, invoice.Status)
	assert.Equal(t, clientID, invoice.ClientID)

	_, err = repo.FindByNumber(ctx, tenantID, "INV-999")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Numbers are scoped per tenant.
	_, err = repo.FindByNumber(ctx, uuid.New(), "INV-001")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvoiceRepository_FindByClient(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "100", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-002", "CUSTOMER", "PAID", "200", issue.AddDate(0, 1, 0))
	insertInvoice(t, db, tenantID, uuid.New(), "INV-003", "CUSTOMER", "SENT", "300", issue)

	invoices, err := repo.FindByClient(ctx, tenantID, clientID)
	require.NoError(t, err)

	require.Len(t, invoices, 2)
	// Most recent issue date first.
	assert.Equal(t, "INV-002", invoices[0].Number)
}

func TestGormInvoiceRepository_FindSentDueBefore(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	// Due dates are issue+30d: INV-001 is past due, INV-002 is not,
	// INV-003 is past due but already paid, INV-004 belongs elsewhere.
	insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "100",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	insertInvoice(t, db, tenantID, clientID, "INV-002", "CUSTOMER", "SENT", "200",
		time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC))
	insertInvoice(t, db, tenantID, clientID, "INV-003", "CUSTOMER", "PAID", "300",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	insertInvoice(t, db, uuid.New(), clientID, "INV-004", "CUSTOMER", "SENT", "400",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	invoices, err := repo.FindSentDueBefore(ctx, tenantID, now)
	require.NoError(t, err)

	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-001", invoices[0].Number)
}

func TestGormPaymentRepository_SumByInvoice(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	invoiceID := insertInvoice(t, db, tenantID, uuid.New(), "INV-001", "CUSTOMER", "SENT", "1000",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	// No payments yet: sum is zero, not an error.
	sum, err := repo.SumByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	now := time.Now()
	insertPayment(t, db, tenantID, invoiceID, "400", now)
	insertPayment(t, db, tenantID, invoiceID, "250", now)

	sum, err = repo.SumByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "650", sum.String())
}
