package server

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"propinvest/internal/domain"
	"propinvest/pkg/errcodes"
	"propinvest/pkg/httpx/reply"
)

//nolint:gochecknoglobals
var statusByCode = map[failure.ErrorCode]int{
	errcodes.ValidationError:      http.StatusBadRequest,
	errcodes.InvalidInput:         http.StatusBadRequest,
	errcodes.InvalidWeights:       http.StatusBadRequest,
	errcodes.InvalidJurisdiction:  http.StatusBadRequest,
	errcodes.InvalidOccupancy:     http.StatusBadRequest,
	errcodes.DuplicateAreaCode:    http.StatusBadRequest,
	errcodes.MissingReferenceData: http.StatusUnprocessableEntity,
	errcodes.NotFound:             http.StatusNotFound,
	errcodes.SnapshotNotFound:     http.StatusNotFound,
}

// replyError доменные ошибки отображаются по коду, остальные разбирает reply.Error.
func replyError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		reply.Error(ctx, w, err)
		return
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		reply.ErrorWithStatus(ctx, w, http.StatusInternalServerError, errcodes.InternalServerError, "internal error", err)
		return
	}

	reply.ErrorWithStatus(ctx, w, status, appErr.Code, appErr.Message, err)
}
