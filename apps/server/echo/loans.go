package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core/library"
)

const defaultPageSize = 50

type loanApi struct {
	svc *library.LoanService
}

func registerLoanAPI(g *echo.Group, svc *library.LoanService) {
	api := loanApi{svc: svc}

	lg := g.Group("/loans")
	lg.POST("", api.checkout)
	lg.GET("", api.query)

	dg := lg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/return", api.returnBook)
	dg.POST("/extend", api.extend)
}

func (api *loanApi) checkout(ctx echo.Context) error {
	var data library.NewLoan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLoan")
	}

	ln, err := api.svc.Checkout(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ln)
}

func (api *loanApi) query(ctx echo.Context) error {
	var f library.LoanFilter
	var err error
	if f.Returned, err = boolParam(ctx, "returned"); err != nil {
		return err
	}
	f.DueBefore = library.Date(ctx.QueryParam("due_before"))
	f.DueFrom = library.Date(ctx.QueryParam("due_from"))
	f.DueTo = library.Date(ctx.QueryParam("due_to"))

	limit, offset := pagination(ctx)
	loans, err := api.svc.Filter(ctx.Request().Context(), f, limit, offset)
	if err != nil {
		return errors.Wrap(err, "filtering loans")
	}
	if loans == nil {
		loans = []library.Loan{}
	}
	return ctx.JSON(http.StatusOK, loans)
}

func (api *loanApi) retrieve(ctx echo.Context) error {
	ln, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ln)
}

func (api *loanApi) returnBook(ctx echo.Context) error {
	ln, err := api.svc.Return(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ln)
}

func (api *loanApi) extend(ctx echo.Context) error {
	var data struct {
		DueDate library.Date `json:"to_date"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding extension")
	}

	ln, err := api.svc.Extend(ctx.Request().Context(), ctx.Param("id"), data.DueDate)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ln)
}

func boolParam(ctx echo.Context, name string) (*bool, error) {
	v := ctx.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" param")
	}
	return &b, nil
}

func pagination(ctx echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
