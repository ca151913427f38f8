package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{svc: svc, validate: validate}

	ng := g.Group("/notifications", jwt)
	ng.POST("/broadcast", api.broadcast, adminMiddleware())
	ng.POST("/fee-reminder", api.feeReminder, adminMiddleware())
	ng.POST("/exam-results", api.examResults, teacherMiddleware())
	ng.POST("/attendance-alert", api.attendanceAlert, teacherMiddleware())
}

// Handlers

func (api *notificationApi) broadcast(ctx echo.Context) error {
	var data notification.BroadcastMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BroadcastMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	results, err := api.svc.Broadcast(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == notification.ErrNoRecipients {
			return core.NewValidationError(err,
				core.FieldError{Field: "groups", Error: err.Error()})
		}
		return errors.Wrap(err, "broadcasting message")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *notificationApi) feeReminder(ctx echo.Context) error {
	var data notification.FeeReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeeReminder")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	results, err := api.svc.NotifyFeeReminder(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending fee reminder")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *notificationApi) examResults(ctx echo.Context) error {
	var data notification.ExamResults
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExamResults")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	results, err := api.svc.NotifyExamResults(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending exam results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *notificationApi) attendanceAlert(ctx echo.Context) error {
	var data notification.AttendanceAlert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceAlert")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	results, err := api.svc.NotifyAttendanceAlert(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending attendance alert")
	}
	return ctx.JSON(http.StatusOK, results)
}
