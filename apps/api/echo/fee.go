package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

type feeApi struct {
	svc         *fee.Service
	validate    *validator.Validate
	lateFeeRate decimal.Decimal
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *fee.Service, conf *core.Config, validate *validator.Validate) {
	rate, err := decimal.NewFromString(conf.Engine.LateFeeDailyRate)
	if err != nil {
		rate = decimal.Zero
	}
	api := feeApi{
		svc:         svc,
		validate:    validate,
		lateFeeRate: rate,
	}

	fg := g.Group("/fees", jwt)
	fg.POST("", api.create, adminMiddleware())
	fg.POST("/bulk", api.bulkCreate, adminMiddleware())
	fg.GET("", api.query)
	fg.GET("/overdue", api.overdue)
	fg.GET("/students/:id/summary", api.studentSummary)
	fg.POST("/:id/payments", api.recordPayment, adminMiddleware())
	fg.POST("/:id/accrue-late-fee", api.accrueLateFee, adminMiddleware())
	fg.GET("/:id", api.retrieve)
	fg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.RecordCharge(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording charge")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feeApi) bulkCreate(ctx echo.Context) error {
	var data []fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee list")
	}
	// validate every row before the first write
	for i := range data {
		if err := data[i].Validate(api.validate); err != nil {
			return fee.BulkError{Row: i, Err: err}
		}
	}

	fees, err := api.svc.BulkRecordCharges(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording charges")
	}
	return ctx.JSON(http.StatusCreated, fees)
}

func (api *feeApi) recordPayment(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data fee.Payment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Payment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.RecordPayment(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == fee.ErrNotFound {
			return fee.ErrNotFound
		}
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) accrueLateFee(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	f, err := api.svc.AccrueLateFee(ctx.Request().Context(), id, api.lateFeeRate, time.Now())
	if err != nil {
		if errors.Cause(err) == fee.ErrNotFound {
			return fee.ErrNotFound
		}
		return errors.Wrap(err, "accruing late fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	f, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == fee.ErrNotFound {
			return fee.ErrNotFound
		}
		return errors.Wrap(err, "getting fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) query(ctx echo.Context) error {
	var filter fee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	fees, err := api.svc.Filter(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "filtering fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) overdue(ctx echo.Context) error {
	fees, err := api.svc.Overdue(ctx.Request().Context(), time.Now())
	if err != nil {
		return errors.Wrap(err, "listing overdue fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) studentSummary(ctx echo.Context) error {
	studentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var filter fee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	summary, fees, err := api.svc.StudentSummary(ctx.Request().Context(), studentID, filter)
	if err != nil {
		return errors.Wrap(err, "summarizing student fees")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"summary": summary, "fees": fees})
}

func (api *feeApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}
