package insight

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/insight"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service exposes the client financial insight engine as request-scoped
// read operations. Every call loads fresh facts and recomputes; nothing
// is cached or persisted.
type Service struct {
	facts  insight.FactRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new insight service
func NewService(facts insight.FactRepository, logger *zap.Logger) *Service {
	return &Service{
		facts:  facts,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the reference clock, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetFinancialKPIs computes the headline financial summary for a client.
// A client with no invoices yields an all-zero record.
func (s *Service) GetFinancialKPIs(ctx context.Context, tenantID, clientID uuid.UUID) (insight.FinancialKPIs, error) {
	var (
		invoices []insight.InvoiceFact
		sales    []insight.SaleFact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.facts.InvoiceFacts(gctx, tenantID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.facts.SaleFacts(gctx, tenantID, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return insight.FinancialKPIs{}, err
	}

	return insight.ComputeKPIs(s.now(), invoices, sales), nil
}

// GetFinancialRisk scores the client's payment-behavior risk
func (s *Service) GetFinancialRisk(ctx context.Context, tenantID, clientID uuid.UUID) (insight.RiskAssessment, error) {
	invoices, err := s.facts.InvoiceFacts(ctx, tenantID, clientID)
	if err != nil {
		return insight.RiskAssessment{}, err
	}

	assessment := insight.ScoreRisk(insight.BuildRiskInput(s.now(), invoices))

	s.logger.Debug("client risk scored",
		zap.String("client_id", clientID.String()),
		zap.Int("score", assessment.Score),
		zap.String("level", assessment.Level.String()),
	)

	return assessment, nil
}

// GetProfitability computes the trailing-twelve-month revenue/cost analysis
func (s *Service) GetProfitability(ctx context.Context, tenantID, clientID uuid.UUID) (insight.Profitability, error) {
	var (
		invoices []insight.InvoiceFact
		sales    []insight.SaleFact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.facts.InvoiceFacts(gctx, tenantID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.facts.SaleFacts(gctx, tenantID, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return insight.Profitability{}, err
	}

	return insight.AnalyzeProfitability(s.now(), invoices, sales), nil
}

// GetTimeline merges the client's lifecycle sources into one feed. The
// four fetches are independent and run concurrently; correctness does
// not depend on the parallelism.
func (s *Service) GetTimeline(ctx context.Context, tenantID, clientID uuid.UUID) ([]insight.TimelineEvent, error) {
	var (
		client   *insight.ClientFact
		sales    []insight.SaleFact
		invoices []insight.InvoiceFact
		payments []insight.PaymentFact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		client, err = s.facts.ClientFact(gctx, tenantID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.facts.SaleFacts(gctx, tenantID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = s.facts.IssuedInvoiceFacts(gctx, tenantID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.facts.PaymentFacts(gctx, tenantID, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if client == nil {
		// Unknown client: empty feed, not an error.
		return []insight.TimelineEvent{}, nil
	}

	return insight.BuildTimeline(s.now(), client, sales, invoices, payments), nil
}
