package api

import (
	"errors"
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
	"BarPull/internal/usecase"
	xhttp "BarPull/pkg/http"
	xlogger "BarPull/pkg/logger"
	"BarPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// BarsHandler serves the bar retrieval and indicator endpoints.
type BarsHandler struct {
	logger     *xlogger.Logger
	bars       *usecase.BarsUseCase
	indicators *usecase.IndicatorsUseCase
	directory  drepo.SymbolDirectory // optional; resolves omitted data_type
}

func NewBarsHandler(logger *xlogger.Logger, bars *usecase.BarsUseCase, indicators *usecase.IndicatorsUseCase, directory drepo.SymbolDirectory) *BarsHandler {
	return &BarsHandler{logger: logger, bars: bars, indicators: indicators, directory: directory}
}

func (h *BarsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/get_data/", h.GetData)
	e.POST("/get_indicator_data/", h.GetIndicatorData)
	e.GET("/get_available_indicators/", h.GetAvailableIndicators)
}

// GetData returns the row-form bar series for a symbol and date range.
func (h *BarsHandler) GetData(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params, appErr := h.barsParams(c, req.DataName, req.DataType, req.FromDate, req.ToDate, req.TimeFrame)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}

	series, err := h.bars.GetBars(c.Request().Context(), params)
	if err != nil {
		return h.retrievalError(c, err)
	}
	return xhttp.SuccessResponse(c, series)
}

// GetIndicatorData computes an indicator over the requested range and
// returns its output series.
func (h *BarsHandler) GetIndicatorData(c echo.Context) error {
	req := &models.IndicatorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params, appErr := h.barsParams(c, req.SourceName, req.DataType, req.FromDate, req.ToDate, req.TimeFrame)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}

	out, err := h.indicators.GetIndicator(c.Request().Context(), usecase.GetIndicatorParams{
		Indicator: req.IndicatorName,
		Symbol:    params.Symbol,
		From:      params.From,
		To:        params.To,
		Timeframe: params.Timeframe,
		AssetType: params.AssetType,
		Kwargs:    req.Kwargs,
	})
	if err != nil {
		return h.retrievalError(c, err)
	}
	return xhttp.SuccessResponse(c, out)
}

// GetAvailableIndicators lists the indicator catalog grouped by family.
func (h *BarsHandler) GetAvailableIndicators(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.indicators.Describe())
}

// barsParams normalizes the shared request fields into usecase params.
// The to date defaults to now in the exchange's local zone.
func (h *BarsHandler) barsParams(c echo.Context, symbol, dataType, fromDate, toDate, timeFrame string) (usecase.GetBarsParams, *xhttp.AppError) {
	from, err := util.ParseDate(fromDate)
	if err != nil {
		return usecase.GetBarsParams{}, xhttp.BadRequestError(err.Error())
	}
	to, err := util.ParseDateDefault(toDate, time.Now().In(util.Eastern))
	if err != nil {
		return usecase.GetBarsParams{}, xhttp.BadRequestError(err.Error())
	}

	assetType, ok := models.NormalizeAssetType(dataType)
	if !ok {
		if dataType != "" || h.directory == nil {
			return usecase.GetBarsParams{}, xhttp.BadRequestError(models.ErrInvalidAssetType.Error())
		}
		resolved, rerr := h.directory.Resolve(c.Request().Context(), symbol)
		if rerr != nil {
			if errors.Is(rerr, models.ErrSymbolUnknown) {
				return usecase.GetBarsParams{}, xhttp.NotFoundError(rerr.Error())
			}
			h.logger.Error("symbol resolve failed", xlogger.Error(rerr))
			return usecase.GetBarsParams{}, xhttp.BadGatewayError("symbol directory unavailable")
		}
		assetType = resolved
	}

	return usecase.GetBarsParams{
		Symbol:    symbol,
		From:      from,
		To:        to,
		Timeframe: drepo.NormalizeTimeframe(timeFrame),
		AssetType: assetType,
	}, nil
}

// retrievalError maps domain errors to response envelopes: validation
// failures are 400s, upstream failures 502s.
func (h *BarsHandler) retrievalError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidTimeframe), errors.Is(err, models.ErrInvalidAssetType):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		var fetchErr *models.FetchError
		if errors.As(err, &fetchErr) {
			h.logger.Error("upstream fetch failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(err.Error()))
		}
		h.logger.Error("retrieval failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
}
