package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/report"
)

type reportApi struct {
	feeSvc        *fee.Service
	gradeSvc      *grade.Service
	attendanceSvc *attendance.Service
	passMark      decimal.Decimal
}

func registerReportAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	feeSvc *fee.Service,
	gradeSvc *grade.Service,
	attendanceSvc *attendance.Service,
	conf *core.Config,
) {
	api := reportApi{
		feeSvc:        feeSvc,
		gradeSvc:      gradeSvc,
		attendanceSvc: attendanceSvc,
		passMark:      decimal.NewFromFloat(conf.Engine.PassMark),
	}

	rg := g.Group("/reports", jwt)
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/finance", api.finance)
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	fees, err := api.feeSvc.Filter(reqCtx, fee.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "filtering fees")
	}
	recs, err := api.gradeSvc.Filter(reqCtx, grade.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "filtering score records")
	}
	days, err := api.attendanceSvc.Filter(reqCtx, attendance.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "filtering attendance records")
	}

	return ctx.JSON(http.StatusOK, report.BuildDashboard(fees, recs, days, api.passMark))
}

func (api *reportApi) finance(ctx echo.Context) error {
	var filter fee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	fees, err := api.feeSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering fees")
	}
	return ctx.JSON(http.StatusOK, report.Finances(fees))
}
