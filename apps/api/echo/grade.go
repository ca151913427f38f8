package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/report"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
	passMark decimal.Decimal
}

type regradeRequest struct {
	MarksObtained decimal.Decimal `json:"marks_obtained"`
	TotalMarks    decimal.Decimal `json:"total_marks"`
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grade.Service, conf *core.Config, validate *validator.Validate) {
	api := gradeApi{
		svc:      svc,
		validate: validate,
		passMark: decimal.NewFromFloat(conf.Engine.PassMark),
	}

	sg := g.Group("/scores", jwt)
	sg.POST("", api.create, teacherMiddleware())
	sg.POST("/bulk", api.bulkCreate, teacherMiddleware())
	sg.GET("", api.query)
	sg.GET("/class-report", api.classReport)
	sg.GET("/rankings", api.rankings)
	sg.PUT("/:id/regrade", api.regrade, teacherMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.RecordScore(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording score")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradeApi) bulkCreate(ctx echo.Context) error {
	var data []grade.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore list")
	}
	// validate every row before the first write
	for i := range data {
		if err := data[i].Validate(api.validate); err != nil {
			return err
		}
	}

	recs, err := api.svc.BulkRecordScores(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording scores")
	}
	return ctx.JSON(http.StatusCreated, recs)
}

func (api *gradeApi) regrade(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data regradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to regradeRequest")
	}

	rec, err := api.svc.Regrade(ctx.Request().Context(), id, data.MarksObtained, data.TotalMarks)
	if err != nil {
		if errors.Cause(err) == grade.ErrNotFound {
			return grade.ErrNotFound
		}
		return errors.Wrap(err, "regrading score")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	rec, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == grade.ErrNotFound {
			return grade.ErrNotFound
		}
		return errors.Wrap(err, "getting score record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradeApi) query(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	recs, err := api.svc.Filter(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "filtering score records")
	}
	return ctx.JSON(http.StatusOK, recs)
}

// classReport groups matching records by class (default) or subject and
// aggregates each group.
func (api *gradeApi) classReport(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	groupBy := report.GroupByClass
	if core.CleanString(ctx.QueryParam("group_by"), true /* lower */) == string(report.GroupBySubject) {
		groupBy = report.GroupBySubject
	}

	recs, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering score records")
	}
	return ctx.JSON(http.StatusOK, report.ClassPerformance(recs, groupBy, api.passMark))
}

func (api *gradeApi) rankings(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	rankings, err := api.svc.Rankings(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "ranking score records")
	}
	return ctx.JSON(http.StatusOK, rankings)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting score record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
