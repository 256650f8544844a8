package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/httpx/reply"
	"propinvest/pkg/httpx/req"
	"propinvest/pkg/rest"
)

type dealService interface {
	Evaluate(ctx context.Context, in entity.DealInput) (entity.DealResult, error)
	EstimateDuty(ctx context.Context, price decimal.Decimal, j value.Jurisdiction, o value.Occupancy) (entity.DutyEstimate, error)
	ImportBrackets(ctx context.Context, j value.Jurisdiction, o value.Occupancy, table entity.BracketTable) error
	Tables(ctx context.Context) ([]entity.BracketKey, error)
}

type DealServer struct {
	deals dealService
}

func NewDealServer(deals dealService) DealServer {
	return DealServer{
		deals: deals,
	}
}

func (s DealServer) postV1DealsEvaluate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.DealRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	in, err := newDomainDealInput(request)
	if err != nil {
		return err
	}

	res, err := s.deals.Evaluate(ctx, in)
	if err != nil {
		return fmt.Errorf("deals.Evaluate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(res))

	return nil
}

func (s DealServer) getV1Duty(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	price, err := decimal.NewFromString(query.Get("price"))
	if err != nil {
		return failure.NewInvalidArgumentError(
			fmt.Errorf("decimal.NewFromString: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("price must be a number"),
		)
	}

	j, o, err := parseBracketKey(query.Get("jurisdiction"), query.Get("occupancy"))
	if err != nil {
		return err
	}

	est, err := s.deals.EstimateDuty(ctx, price, j, o)
	if err != nil {
		return fmt.Errorf("deals.EstimateDuty: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDutyEstimate(est))

	return nil
}

func (s DealServer) getV1DutyBrackets(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	keys, err := s.deals.Tables(ctx)
	if err != nil {
		return fmt.Errorf("deals.Tables: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(keys, newRESTBracketKey))

	return nil
}

func (s DealServer) putV1DutyBrackets(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	j, o, err := parseBracketKey(chi.URLParam(r, "jurisdiction"), chi.URLParam(r, "occupancy"))
	if err != nil {
		return err
	}

	var request rest.BracketTableRequest
	if err = req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	table := lo.Map(request.Brackets, newDomainDutyBracket)

	if err = s.deals.ImportBrackets(ctx, j, o, table); err != nil {
		return fmt.Errorf("deals.ImportBrackets: %w", err)
	}

	reply.OK(w)

	return nil
}

func parseBracketKey(jurisdiction, occupancy string) (value.Jurisdiction, value.Occupancy, error) {
	j, err := value.ParseJurisdiction(jurisdiction)
	if err != nil {
		return "", "", fmt.Errorf("value.ParseJurisdiction: %w", err)
	}

	o, err := value.ParseOccupancy(occupancy)
	if err != nil {
		return "", "", fmt.Errorf("value.ParseOccupancy: %w", err)
	}

	return j, o, nil
}
