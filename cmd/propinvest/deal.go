package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/service/deal"
	"propinvest/internal/domain/service/finance"
	"propinvest/internal/domain/value"
	"propinvest/internal/infrastructure/csvsource"
)

func bracketFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "brackets",
			Value: cli.NewStringSlice(defaultBracketsPath, defaultBracketsSamplePath),
			Usage: "Duty bracket CSV; the first existing file is used",
		},
		&cli.StringFlag{
			Name:     "jurisdiction",
			Aliases:  []string{"j"},
			Required: true,
			Usage:    "State or territory (NSW, VIC, QLD, SA, WA, TAS, NT, ACT)",
		},
		&cli.StringFlag{
			Name:    "occupancy",
			Aliases: []string{"o"},
			Value:   value.OccupancyInvestor.String(),
			Usage:   "OO (owner-occupier) or INV (investor)",
		},
	}
}

func dealCommand() *cli.Command {
	return &cli.Command{
		Name:  "deal",
		Usage: "Evaluate loan, yield, cashflow and stamp duty for one property",
		Flags: append(bracketFlags(),
			&cli.Float64Flag{Name: "price", Required: true, Usage: "Purchase price"},
			&cli.Float64Flag{Name: "weekly-rent", Usage: "Expected weekly rent"},
			&cli.Float64Flag{Name: "expenses", Usage: "Annual expenses (rates, insurance, management)"},
			&cli.Float64Flag{Name: "deposit-pct", Value: 20, Usage: "Deposit as percent of price"}, //nolint:mnd
			&cli.Float64Flag{Name: "rate", Value: 6.5, Usage: "Annual interest rate, percent"}, //nolint:mnd
			&cli.IntFlag{Name: "term", Value: 30, Usage: "Loan term, years"}, //nolint:mnd
			&cli.Float64Flag{Name: "closing-costs", Usage: "Conveyancing and other closing costs"},
			&cli.Float64Flag{Name: "lmi-cost", Usage: "Mortgage insurance premium"},
			&cli.Float64Flag{
				Name:  "buffer",
				Value: finance.DefaultServiceabilityBufferPct,
				Usage: "Serviceability buffer, percentage points",
			},
		),
		Action: runDeal,
	}
}

func runDeal(c *cli.Context) error {
	j, o, err := parseKey(c)
	if err != nil {
		return err
	}

	svc, err := newDealService(c)
	if err != nil {
		return err
	}

	buffer := c.Float64("buffer")

	res, err := svc.Evaluate(c.Context, entity.DealInput{
		Price:                   c.Float64("price"),
		WeeklyRent:              c.Float64("weekly-rent"),
		AnnualExpenses:          c.Float64("expenses"),
		DepositFrac:             c.Float64("deposit-pct") / 100, //nolint:mnd
		AnnualRatePct:           c.Float64("rate"),
		TermYears:               c.Int("term"),
		Jurisdiction:            j,
		Occupancy:               o,
		ClosingCosts:            c.Float64("closing-costs"),
		MortgageInsuranceCost:   c.Float64("lmi-cost"),
		ServiceabilityBufferPct: &buffer,
	})
	if err != nil {
		return fmt.Errorf("deal.Evaluate: %w", err)
	}

	if c.String("format") == formatJSON {
		return writeJSON(c, newDealView(res))
	}

	if res.Duty.IsEstimate() {
		warnf(c, "price is outside the published duty brackets, duty is an estimate")
	}

	t := newTable(c)
	t.row("deposit", money(res.Deposit))
	t.row("loan", money(res.Loan))
	t.row("monthly repayment", money(res.MonthlyRepayment))
	t.row("assessed rate", pct(res.AssessedRatePct))
	t.row("assessed repayment", money(res.AssessedMonthlyRepayment))
	t.row("LVR", pct(res.LVRPct))
	t.row("LMI likely", strconv.FormatBool(res.MortgageInsuranceLikely))
	t.row("gross yield", pct(res.GrossYieldPct))
	t.row("net yield", pct(res.NetYieldPct))
	t.row("annual net cashflow", money(res.AnnualNetCashflow))
	t.row("cash on cash", pct(res.CashOnCashPct))
	t.row("stamp duty", res.Duty.Amount.StringFixed(2), string(res.Duty.Outcome)) //nolint:mnd

	return t.flush()
}

type dealView struct {
	Deposit                  float64  `json:"deposit"`
	Loan                     float64  `json:"loan"`
	MonthlyRepayment         float64  `json:"monthlyRepayment"`
	AssessedRatePct          float64  `json:"assessedRatePct"`
	AssessedMonthlyRepayment float64  `json:"assessedMonthlyRepayment"`
	LVRPct                   float64  `json:"lvrPct"`
	MortgageInsuranceLikely  bool     `json:"mortgageInsuranceLikely"`
	GrossYieldPct            float64  `json:"grossYieldPct"`
	NetYieldPct              float64  `json:"netYieldPct"`
	AnnualNetCashflow        float64  `json:"annualNetCashflow"`
	CashOnCashPct            float64  `json:"cashOnCashPct"`
	Duty                     dutyView `json:"duty"`
}

func newDealView(res entity.DealResult) dealView {
	return dealView{
		Deposit:                  res.Deposit,
		Loan:                     res.Loan,
		MonthlyRepayment:         res.MonthlyRepayment,
		AssessedRatePct:          res.AssessedRatePct,
		AssessedMonthlyRepayment: res.AssessedMonthlyRepayment,
		LVRPct:                   res.LVRPct,
		MortgageInsuranceLikely:  res.MortgageInsuranceLikely,
		GrossYieldPct:            res.GrossYieldPct,
		NetYieldPct:              res.NetYieldPct,
		AnnualNetCashflow:        res.AnnualNetCashflow,
		CashOnCashPct:            res.CashOnCashPct,
		Duty:                     newDutyView(res.Duty),
	}
}

// newDealService сервис сделок поверх таблицы пошлины, прочитанной из CSV.
func newDealService(c *cli.Context) (*deal.Service, error) {
	table, _, err := csvsource.ReadBracketsFile(c.StringSlice("brackets")...)
	if err != nil {
		return nil, fmt.Errorf("csvsource.ReadBracketsFile: %w", err)
	}

	return deal.NewService(staticBrackets(table)), nil
}

func parseKey(c *cli.Context) (value.Jurisdiction, value.Occupancy, error) {
	j, err := value.ParseJurisdiction(c.String("jurisdiction"))
	if err != nil {
		return "", "", fmt.Errorf("value.ParseJurisdiction: %w", err)
	}

	o, err := value.ParseOccupancy(c.String("occupancy"))
	if err != nil {
		return "", "", fmt.Errorf("value.ParseOccupancy: %w", err)
	}

	return j, o, nil
}

// staticBrackets таблица пошлины только для чтения.
type staticBrackets entity.BracketTable

func (s staticBrackets) ListBrackets(_ context.Context, j value.Jurisdiction, o value.Occupancy) (entity.BracketTable, error) {
	return entity.BracketTable(s).For(j, o), nil
}

func (s staticBrackets) ReplaceBrackets(context.Context, value.Jurisdiction, value.Occupancy, entity.BracketTable) error {
	return errors.New("bracket table loaded from CSV is read-only")
}

func (s staticBrackets) ListKeys(context.Context) ([]entity.BracketKey, error) {
	seen := make(map[entity.BracketKey]struct{})
	keys := make([]entity.BracketKey, 0)

	for _, b := range s {
		k := entity.BracketKey{Jurisdiction: b.Jurisdiction, Occupancy: b.Occupancy}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	return keys, nil
}
