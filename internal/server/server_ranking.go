package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"git.appkode.ru/pub/go/failure"
	"github.com/samber/lo"

	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/httpx/reply"
	"propinvest/pkg/httpx/req"
	"propinvest/pkg/rest"
)

const weightParamPrefix = "weight."

type rankingService interface {
	RankRows(ctx context.Context, rows []entity.FeatureRow, weights value.Weights, limit int) ([]entity.ScoredRow, error)
	Rank(ctx context.Context, weights value.Weights, limit int) ([]entity.ScoredRow, error)
	Latest(ctx context.Context) (entity.RankingSnapshot, error)
	ImportAreas(ctx context.Context, rows []entity.FeatureRow) error
}

type refreshQueue interface {
	Enqueue(ctx context.Context) (string, error)
}

type RankingServer struct {
	rankings rankingService
	refresh  refreshQueue
}

func NewRankingServer(rankings rankingService, refresh refreshQueue) RankingServer {
	return RankingServer{
		rankings: rankings,
		refresh:  refresh,
	}
}

func (s RankingServer) getV1Factors(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, lo.Map(value.Factors(), newRESTFactor))

	return nil
}

// getV1Rankings веса передаются параметрами weight.<factor>=<число>.
func (s RankingServer) getV1Rankings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	limit, err := parseLimit(query)
	if err != nil {
		return err
	}

	raw, err := parseWeights(query)
	if err != nil {
		return err
	}

	weights, ignored := value.WeightsFromMap(raw)

	rows, err := s.rankings.Rank(ctx, weights, limit)
	if err != nil {
		return fmt.Errorf("rankings.Rank: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTRanking(rows, weights, ignored))

	return nil
}

func (s RankingServer) postV1Rankings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.RankRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	weights, ignored := value.WeightsFromMap(request.Weights)

	rows, err := s.rankings.RankRows(ctx, lo.Map(request.Rows, newDomainFeatureRow), weights, request.Limit)
	if err != nil {
		return fmt.Errorf("rankings.RankRows: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTRanking(rows, weights, ignored))

	return nil
}

func (s RankingServer) getV1RankingsLatest(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		return err
	}

	snapshot, err := s.rankings.Latest(ctx)
	if err != nil {
		return fmt.Errorf("rankings.Latest: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSnapshot(snapshot, limit))

	return nil
}

func (s RankingServer) postV1RankingsRefresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	taskID, err := s.refresh.Enqueue(ctx)
	if err != nil {
		return fmt.Errorf("refresh.Enqueue: %w", err)
	}

	reply.JSON(ctx, w, http.StatusAccepted, rest.RefreshResponse{
		TaskID: taskID,
		Queued: taskID != "",
	})

	return nil
}

func (s RankingServer) putV1Areas(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ImportAreasRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if err := s.rankings.ImportAreas(ctx, lo.Map(request.Areas, newDomainFeatureRow)); err != nil {
		return fmt.Errorf("rankings.ImportAreas: %w", err)
	}

	reply.OK(w)

	return nil
}

func parseLimit(query url.Values) (int, error) {
	raw := query.Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, failure.NewInvalidArgumentError(
			fmt.Errorf("strconv.Atoi: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("limit must be an integer"),
		)
	}

	return limit, nil
}

func parseWeights(query url.Values) (map[string]float64, error) {
	raw := make(map[string]float64)

	for key, values := range query {
		name, ok := strings.CutPrefix(key, weightParamPrefix)
		if !ok || len(values) == 0 {
			continue
		}

		w, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return nil, failure.NewInvalidArgumentError(
				fmt.Errorf("strconv.ParseFloat: %w", err).Error(),
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription("weight "+name+" must be a number"),
			)
		}

		raw[name] = w
	}

	return raw, nil
}
