package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core/library"
)

type reservationApi struct {
	svc *library.ReservationService
}

func registerReservationAPI(g *echo.Group, svc *library.ReservationService) {
	api := reservationApi{svc: svc}

	rg := g.Group("/reservations")
	rg.POST("", api.reserve)
	rg.GET("", api.query)

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/ready", api.markReady)
	dg.POST("/cancel", api.cancel)
	dg.POST("/fulfill", api.fulfill)
}

func (api *reservationApi) reserve(ctx echo.Context) error {
	var data library.NewReservation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReservation")
	}

	res, err := api.svc.Reserve(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *reservationApi) query(ctx echo.Context) error {
	var f library.ReservationFilter
	var err error
	if f.Active, err = boolParam(ctx, "active"); err != nil {
		return err
	}
	if f.Ready, err = boolParam(ctx, "ready"); err != nil {
		return err
	}
	if f.Notified, err = boolParam(ctx, "notified"); err != nil {
		return err
	}

	limit, offset := pagination(ctx)
	reservations, err := api.svc.Filter(ctx.Request().Context(), f, limit, offset)
	if err != nil {
		return errors.Wrap(err, "filtering reservations")
	}
	if reservations == nil {
		reservations = []library.Reservation{}
	}
	return ctx.JSON(http.StatusOK, reservations)
}

func (api *reservationApi) retrieve(ctx echo.Context) error {
	res, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reservationApi) markReady(ctx echo.Context) error {
	res, err := api.svc.MarkReady(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reservationApi) cancel(ctx echo.Context) error {
	res, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reservationApi) fulfill(ctx echo.Context) error {
	res, err := api.svc.Fulfill(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
