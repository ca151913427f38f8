package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

type rateQuery struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.POST("/check-in", api.checkIn, teacherMiddleware())
	ag.POST("/check-out", api.checkOut, teacherMiddleware())
	ag.POST("/bulk-mark", api.bulkMark, teacherMiddleware())
	ag.GET("", api.query)
	ag.GET("/students/:id/rate", api.studentRate)
}

// Handlers

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	var data attendance.CheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckIn")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	day, err := api.svc.MarkCheckIn(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking check-in")
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	var data attendance.CheckOut
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckOut")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	day, err := api.svc.MarkCheckOut(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return attendance.ErrNotFound
		}
		return errors.Wrap(err, "marking check-out")
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *attendanceApi) bulkMark(ctx echo.Context) error {
	var data attendance.BulkMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkMark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	days, err := api.svc.MarkBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "bulk marking attendance")
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	var ord Ordering
	ord.Bind(ctx)

	days, err := api.svc.Filter(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "filtering attendance records")
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *attendanceApi) studentRate(ctx echo.Context) error {
	studentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var q rateQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to rateQuery")
	}

	rate, err := api.svc.StudentRate(ctx.Request().Context(), studentID, q.From, q.To)
	if err != nil {
		return errors.Wrap(err, "computing attendance rate")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"student_id": studentID, "rate": rate})
}
