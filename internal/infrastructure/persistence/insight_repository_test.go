package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupInsightTestDB creates an in-memory SQLite database with the fact
// source tables
func setupInsightTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE clients (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			tax_id TEXT,
			status TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoices (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			client_id TEXT NOT NULL,
			number TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			total NUMERIC NOT NULL,
			issue_date DATETIME NOT NULL,
			due_date DATETIME NOT NULL,
			paid_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoice_payments (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			invoice_id TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			paid_at DATETIME NOT NULL,
			method TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sales (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			client_id TEXT NOT NULL,
			product TEXT NOT NULL,
			price NUMERIC NOT NULL,
			discount NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			sale_date DATETIME NOT NULL,
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return db
}

func insertInvoice(t *testing.T, db *gorm.DB, tenantID, clientID uuid.UUID, number, invType, status, total string, issue time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`INSERT INTO invoices
		(id, tenant_id, client_id, number, type, status, currency, total, issue_date, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'EUR', ?, ?, ?, ?, ?)`,
		id, tenantID, clientID, number, invType, status, total,
		issue, issue.AddDate(0, 0, 30), issue, issue).Error
	require.NoError(t, err)
	return id
}

func insertPayment(t *testing.T, db *gorm.DB, tenantID, invoiceID uuid.UUID, amount string, paidAt time.Time) {
	t.Helper()
	err := db.Exec(`INSERT INTO invoice_payments
		(id, tenant_id, invoice_id, amount, paid_at, method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'transfer', ?, ?)`,
		uuid.New(), tenantID, invoiceID, amount, paidAt, paidAt, paidAt).Error
	require.NoError(t, err)
}

func insertClient(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`INSERT INTO clients
		(id, tenant_id, name, status, risk_level, created_at, updated_at)
		VALUES (?, ?, ?, 'active', 'low', ?, ?)`,
		id, tenantID, name, createdAt, createdAt).Error
	require.NoError(t, err)
	return id
}

func TestGormInsightRepository_InvoiceFacts(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	sent := insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "1000", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-002", "CUSTOMER", "DRAFT", "500", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-003", "CUSTOMER", "CANCELED", "700", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-004", "SUPPLIER", "SENT", "300", issue)
	insertPayment(t, db, tenantID, sent, "400", issue.AddDate(0, 0, 10))
	insertPayment(t, db, tenantID, sent, "100", issue.AddDate(0, 0, 20))

	facts, err := repo.InvoiceFacts(ctx, tenantID, clientID)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, sent, facts[0].ID)
	assert.Equal(t, billing.InvoiceStatusSent, facts[0].Status)
	assert.Equal(t, "1000", facts[0].Total.String())
	assert.Equal(t, "500", facts[0].PaidAmount.String())
	assert.Equal(t, "500", facts[0].Outstanding().String())
}

func TestGormInsightRepository_InvoiceFacts_ZeroPaidWithoutPayments(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "250",
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	facts, err := repo.InvoiceFacts(ctx, tenantID, clientID)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.True(t, facts[0].PaidAmount.IsZero())
}

func TestGormInsightRepository_IssuedInvoiceFacts_IncludesCancelled(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "SENT", "1000", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-002", "CUSTOMER", "CANCELED", "700", issue)
	insertInvoice(t, db, tenantID, clientID, "INV-003", "CUSTOMER", "DRAFT", "500", issue)

	facts, err := repo.IssuedInvoiceFacts(ctx, tenantID, clientID)
	require.NoError(t, err)

	assert.Len(t, facts, 2)
}

func TestGormInsightRepository_InvoiceFacts_TenantIsolation(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	insertInvoice(t, db, uuid.New(), clientID, "INV-001", "CUSTOMER", "SENT", "1000", issue)

	facts, err := repo.InvoiceFacts(ctx, uuid.New(), clientID)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestGormInsightRepository_SaleFacts(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	saleDate := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Exec(`INSERT INTO sales
		(id, tenant_id, client_id, product, price, discount, total, sale_date, status, currency, created_at, updated_at)
		VALUES (?, ?, ?, 'Consulting', '400', '150', '500', ?, 'won', 'EUR', ?, ?)`,
		uuid.New(), tenantID, clientID, saleDate, saleDate, saleDate).Error)

	facts, err := repo.SaleFacts(ctx, tenantID, clientID)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, "Consulting", facts[0].Product)
	assert.Equal(t, "250", facts[0].Cost().String())
	assert.Equal(t, "500", facts[0].Total.String())
}

func TestGormInsightRepository_PaymentFacts_SkipsDraftInvoices(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	clientID := uuid.New()
	issue := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	sent := insertInvoice(t, db, tenantID, clientID, "INV-001", "CUSTOMER", "PAID", "100", issue)
	draft := insertInvoice(t, db, tenantID, clientID, "INV-002", "CUSTOMER", "DRAFT", "200", issue)
	insertPayment(t, db, tenantID, sent, "100", issue.AddDate(0, 0, 5))
	insertPayment(t, db, tenantID, draft, "50", issue.AddDate(0, 0, 5))

	facts, err := repo.PaymentFacts(ctx, tenantID, clientID)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, sent, facts[0].InvoiceID)
	assert.Equal(t, "100", facts[0].Amount.String())
	assert.Equal(t, "EUR", facts[0].Currency)
}

func TestGormInsightRepository_ClientFact(t *testing.T) {
	db := setupInsightTestDB(t)
	repo := NewGormInsightRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	createdAt := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	clientID := insertClient(t, db, tenantID, "Acme Corp", createdAt)

	fact, err := repo.ClientFact(ctx, tenantID, clientID)
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, "Acme Corp", fact.Name)

	// Unknown client yields nil without an error.
	fact, err = repo.ClientFact(ctx, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, fact)

	// Same client under another tenant is invisible.
	fact, err = repo.ClientFact(ctx, uuid.New(), clientID)
	require.NoError(t, err)
	assert.Nil(t, fact)
}
