package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core/library"
)

type catalogApi struct {
	reviewSvc  *library.ReviewService
	requestSvc *library.RequestService
}

func registerCatalogAPI(g *echo.Group, reviewSvc *library.ReviewService, requestSvc *library.RequestService) {
	api := catalogApi{reviewSvc: reviewSvc, requestSvc: requestSvc}

	g.POST("/reviews", api.addReview)
	g.POST("/requests", api.addRequest)
}

func (api *catalogApi) addReview(ctx echo.Context) error {
	var data library.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	rv, err := api.reviewSvc.Add(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rv)
}

func (api *catalogApi) addRequest(ctx echo.Context) error {
	var data library.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}

	rq, err := api.requestSvc.Add(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rq)
}
