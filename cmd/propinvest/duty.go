package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"propinvest/internal/domain/entity"
)

func dutyCommand() *cli.Command {
	return &cli.Command{
		Name:  "duty",
		Usage: "Look up stamp duty for a purchase price",
		Flags: append(bracketFlags(),
			&cli.StringFlag{Name: "price", Required: true, Usage: "Purchase price"},
		),
		Action: runDuty,
	}
}

type dutyView struct {
	Amount     string `json:"amount"`
	Outcome    string `json:"outcome"`
	Estimate   bool   `json:"estimate"`
	BracketMin string `json:"bracketMin"`
	BracketMax string `json:"bracketMax"`
}

func newDutyView(e entity.DutyEstimate) dutyView {
	return dutyView{
		Amount:     e.Amount.StringFixed(2), //nolint:mnd
		Outcome:    string(e.Outcome),
		Estimate:   e.IsEstimate(),
		BracketMin: e.Bracket.BracketMin.String(),
		BracketMax: e.Bracket.BracketMax.String(),
	}
}

func runDuty(c *cli.Context) error {
	price, err := decimal.NewFromString(c.String("price"))
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	j, o, err := parseKey(c)
	if err != nil {
		return err
	}

	svc, err := newDealService(c)
	if err != nil {
		return err
	}

	est, err := svc.EstimateDuty(c.Context, price, j, o)
	if err != nil {
		return fmt.Errorf("deal.EstimateDuty: %w", err)
	}

	view := newDutyView(est)

	if c.String("format") == formatJSON {
		return writeJSON(c, view)
	}

	t := newTable(c)
	t.row("jurisdiction", j.String(), o.String())
	t.row("price", price.String())
	t.row("bracket", view.BracketMin+" - "+view.BracketMax)
	t.row("duty", view.Amount, view.Outcome)

	return t.flush()
}
