// Package deal оценивает отдельную сделку: кредит, доходность и пошлину.
package deal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/duty"
	"propinvest/internal/domain/service/finance"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/logx"
)

const defaultBracketCacheTTL = 10 * time.Minute

type BracketRepository interface {
	ListBrackets(ctx context.Context, j value.Jurisdiction, o value.Occupancy) (entity.BracketTable, error)
	ReplaceBrackets(ctx context.Context, j value.Jurisdiction, o value.Occupancy, table entity.BracketTable) error
	ListKeys(ctx context.Context) ([]entity.BracketKey, error)
}

type Service struct {
	brackets  BracketRepository
	bufferPct float64
	cache     *cache.Cache
}

func NewService(brackets BracketRepository) *Service {
	return &Service{
		brackets:  brackets,
		bufferPct: finance.DefaultServiceabilityBufferPct,
		cache:     cache.New(defaultBracketCacheTTL, 2*defaultBracketCacheTTL),
	}
}

// WithServiceabilityBuffer надбавка к ставке, если в запросе её нет.
func (s *Service) WithServiceabilityBuffer(pct float64) *Service {
	s.bufferPct = pct
	return s
}

func (s *Service) WithBracketCacheTTL(ttl time.Duration) *Service {
	s.cache = cache.New(ttl, 2*ttl)
	return s
}

func (s *Service) Evaluate(ctx context.Context, in entity.DealInput) (entity.DealResult, error) {
	if err := validate(in); err != nil {
		evaluations.WithLabelValues(outcomeInvalid).Inc()
		return entity.DealResult{}, err
	}

	buffer := s.bufferPct
	if in.ServiceabilityBufferPct != nil {
		buffer = *in.ServiceabilityBufferPct
	}

	var res entity.DealResult

	res.Deposit = in.Price * in.DepositFrac
	res.Loan = in.Price - res.Deposit

	repayment, err := finance.MonthlyRepayment(res.Loan, in.AnnualRatePct, in.TermYears)
	if err != nil {
		evaluations.WithLabelValues(outcomeInvalid).Inc()
		return entity.DealResult{}, fmt.Errorf("finance.MonthlyRepayment: %w", err)
	}

	res.MonthlyRepayment = repayment
	res.AssessedRatePct = finance.AssessedRate(in.AnnualRatePct, buffer)

	res.AssessedMonthlyRepayment, err = finance.MonthlyRepayment(res.Loan, res.AssessedRatePct, in.TermYears)
	if err != nil {
		evaluations.WithLabelValues(outcomeInvalid).Inc()
		return entity.DealResult{}, fmt.Errorf("finance.MonthlyRepayment(assessed): %w", err)
	}

	res.LVRPct = finance.LVRPct(in.Price, res.Deposit)
	res.MortgageInsuranceLikely = finance.LikelyMortgageInsurance(res.LVRPct)
	res.GrossYieldPct = finance.GrossYieldPct(in.Price, in.WeeklyRent)
	res.NetYieldPct = finance.NetYieldPct(in.Price, in.WeeklyRent, in.AnnualExpenses)
	res.AnnualNetCashflow = finance.AnnualNetCashflow(in.WeeklyRent, in.AnnualExpenses, res.MonthlyRepayment)

	res.Duty, err = s.EstimateDuty(ctx, decimal.NewFromFloat(in.Price), in.Jurisdiction, in.Occupancy)
	if err != nil {
		evaluations.WithLabelValues(outcomeFailed).Inc()
		return entity.DealResult{}, fmt.Errorf("s.EstimateDuty: %w", err)
	}

	res.CashOnCashPct = finance.CashOnCashPct(
		res.AnnualNetCashflow,
		res.Deposit,
		res.Duty.AmountFloat(),
		in.ClosingCosts,
		in.MortgageInsuranceCost,
	)

	evaluations.WithLabelValues(outcomeOK).Inc()

	logger(ctx).Debug("deal evaluated",
		slog.String(logx.FieldJurisdiction, in.Jurisdiction.String()),
		slog.String(logx.FieldOccupancy, in.Occupancy.String()),
		slog.Float64("lvr", res.LVRPct),
		slog.String("duty-outcome", string(res.Duty.Outcome)),
	)

	return res, nil
}

func (s *Service) EstimateDuty(
	ctx context.Context,
	price decimal.Decimal,
	j value.Jurisdiction,
	o value.Occupancy,
) (entity.DutyEstimate, error) {
	table, err := s.table(ctx, j, o)
	if err != nil {
		return entity.DutyEstimate{}, err
	}

	est, err := duty.Estimate(price, j, o, table)
	if err != nil {
		dutyLookups.WithLabelValues(j.String(), "missing").Inc()
		return entity.DutyEstimate{}, fmt.Errorf("duty.Estimate: %w", err)
	}

	dutyLookups.WithLabelValues(j.String(), string(est.Outcome)).Inc()

	if est.IsEstimate() {
		logger(ctx).Warn("price outside published duty brackets, using top bracket",
			slog.String(logx.FieldJurisdiction, j.String()),
			slog.String(logx.FieldOccupancy, o.String()),
			slog.String("price", price.String()),
		)
	}

	return est, nil
}

// ImportBrackets заменяет таблицу для пары штат/тип владения целиком.
func (s *Service) ImportBrackets(
	ctx context.Context,
	j value.Jurisdiction,
	o value.Occupancy,
	table entity.BracketTable,
) error {
	if len(table) == 0 {
		return domain.NewError(errcodes.InvalidInput, "bracket table is empty")
	}

	rows := make(entity.BracketTable, len(table))

	for i, b := range table {
		if b.BracketMin.GreaterThan(b.BracketMax) {
			return domain.NewError(errcodes.InvalidInput,
				fmt.Sprintf("bracket %d: min %s is above max %s", i, b.BracketMin, b.BracketMax))
		}

		if b.MarginalRatePct.IsNegative() || b.Base.IsNegative() {
			return domain.NewError(errcodes.InvalidInput,
				fmt.Sprintf("bracket %d: base and rate must not be negative", i))
		}

		b.Jurisdiction, b.Occupancy = j, o
		rows[i] = b
	}

	if err := s.brackets.ReplaceBrackets(ctx, j, o, rows); err != nil {
		return fmt.Errorf("brackets.ReplaceBrackets: %w", err)
	}

	s.cache.Delete(cacheKey(j, o))

	logger(ctx).Info("duty brackets imported",
		slog.String(logx.FieldJurisdiction, j.String()),
		slog.String(logx.FieldOccupancy, o.String()),
		slog.Int("rows", len(rows)),
	)

	return nil
}

func (s *Service) table(ctx context.Context, j value.Jurisdiction, o value.Occupancy) (entity.BracketTable, error) {
	key := cacheKey(j, o)

	if cached, ok := s.cache.Get(key); ok {
		if table, ok := cached.(entity.BracketTable); ok {
			return table, nil
		}
	}

	table, err := s.brackets.ListBrackets(ctx, j, o)
	if err != nil {
		return nil, fmt.Errorf("brackets.ListBrackets: %w", err)
	}

	// Пустую таблицу не кэшируем, чтобы импорт был виден сразу.
	if len(table) > 0 {
		s.cache.Set(key, table, cache.DefaultExpiration)
	}

	return table, nil
}

// Tables пары штат/тип владения, для которых загружены таблицы пошлины.
func (s *Service) Tables(ctx context.Context) ([]entity.BracketKey, error) {
	keys, err := s.brackets.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("brackets.ListKeys: %w", err)
	}

	return keys, nil
}

func cacheKey(j value.Jurisdiction, o value.Occupancy) string {
	return entity.BracketKey{Jurisdiction: j, Occupancy: o}.String()
}

func validate(in entity.DealInput) error {
	type field struct {
		name  string
		value float64
	}

	fields := []field{
		{"price", in.Price},
		{"weekly rent", in.WeeklyRent},
		{"annual expenses", in.AnnualExpenses},
		{"deposit fraction", in.DepositFrac},
		{"annual rate", in.AnnualRatePct},
		{"closing costs", in.ClosingCosts},
		{"mortgage insurance cost", in.MortgageInsuranceCost},
	}

	if in.ServiceabilityBufferPct != nil {
		fields = append(fields, field{"serviceability buffer", *in.ServiceabilityBufferPct})
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return domain.NewError(errcodes.InvalidInput, f.name+" must be a finite number")
		}
	}

	if in.DepositFrac < 0 || in.DepositFrac > 1 {
		return domain.NewError(errcodes.InvalidInput, "deposit fraction must be within 0..1")
	}

	if in.TermYears <= 0 {
		return domain.NewError(errcodes.InvalidInput, "loan term must be positive")
	}

	return nil
}
