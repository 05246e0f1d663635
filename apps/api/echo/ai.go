package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/intellilearn/backend/core/tutor"
	"github.com/intellilearn/backend/core/user"
)

type aiApi struct {
	svc      tutor.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerAIAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc tutor.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := aiApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	ag := g.Group("/ai", jwt)
	ag.POST("/chat", api.chat)
	ag.POST("/generate-content", api.generateContent, roleMiddleware(user.RoleTeacher))
	ag.POST("/analyze-performance", api.analyzePerformance, roleMiddleware(user.RoleTeacher))
}

// Handlers

func (api *aiApi) chat(ctx echo.Context) error {
	var data tutor.ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	resp, err := api.svc.Chat(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "chatting with tutor")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *aiApi) generateContent(ctx echo.Context) error {
	var data tutor.ContentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	resp, err := api.svc.GenerateContent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating content")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *aiApi) analyzePerformance(ctx echo.Context) error {
	var data tutor.AnalysisRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalysisRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	resp, err := api.svc.AnalyzePerformance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "analyzing performance")
	}
	return ctx.JSON(http.StatusOK, resp)
}
