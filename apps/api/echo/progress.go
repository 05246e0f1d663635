package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/user"
)

type progressApi struct {
	engine   *mastery.Engine
	usrSvc   user.Service
	validate *validator.Validate
}

func registerProgressAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	engine *mastery.Engine,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := progressApi{
		engine:   engine,
		usrSvc:   usrSvc,
		validate: validate,
	}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.retrieve)
	pg.GET("/:subject/summary", api.subjectSummary)
	pg.POST("/interactions", api.recordInteraction)
}

// learnerID resolves whose profile is being read. Defaults to the caller;
// a teacher may read any student's, a parent only their children's.
func (api *progressApi) learnerID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	studentID := ctx.QueryParam("student_id")
	if studentID == "" || studentID == claims.Subject {
		return claims.Subject, nil
	}

	if claims.IsTeacher {
		return studentID, nil
	}
	if claims.IsParent {
		usr, err := getContextUser(ctx, api.usrSvc, claims)
		if err != nil {
			return "", errors.Wrap(err, "getting context user")
		}
		for _, child := range usr.Children {
			if child == studentID {
				return studentID, nil
			}
		}
	}
	return "", errHttpForbidden
}

// Handlers

func (api *progressApi) retrieve(ctx echo.Context) error {
	learnerID, err := api.learnerID(ctx)
	if err != nil {
		return err
	}
	profile := api.engine.GetProfile(ctx.Request().Context(), learnerID)
	return ctx.JSON(http.StatusOK, profile)
}

func (api *progressApi) subjectSummary(ctx echo.Context) error {
	learnerID, err := api.learnerID(ctx)
	if err != nil {
		return err
	}
	summary := api.engine.SummarizeSubjectHistory(ctx.Request().Context(), learnerID, ctx.Param("subject"))
	if summary == nil {
		summary = []string{}
	}
	return ctx.JSON(http.StatusOK, SubjectSummaryResponse{
		Subject: ctx.Param("subject"),
		Summary: summary,
	})
}

func (api *progressApi) recordInteraction(ctx echo.Context) error {
	var data InteractionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InteractionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	profile, err := api.engine.RecordInteraction(ctx.Request().Context(), claims.Subject, mastery.Interaction{
		Type:       data.Type,
		Subject:    data.Subject,
		Topic:      data.Topic,
		Score:      data.Score,
		Difficulty: data.Difficulty,
		TimeSpent:  data.TimeSpent,
	})
	if err != nil {
		return errors.Wrap(err, "recording interaction")
	}
	return ctx.JSON(http.StatusOK, profile)
}

type (
	InteractionRequest struct {
		Type       string   `json:"type" validate:"required"`
		Subject    string   `json:"subject"`
		Topic      string   `json:"topic"`
		Score      *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
		Difficulty string   `json:"difficulty" validate:"omitempty,difficulty"`
		TimeSpent  *float64 `json:"timeSpent" validate:"omitempty,gte=0"`
	}

	SubjectSummaryResponse struct {
		Subject string   `json:"subject"`
		Summary []string `json:"summary"`
	}
)

func (ir *InteractionRequest) Validate(validate *validator.Validate) error {
	ir.Type = core.CleanString(ir.Type, true /* lower */)
	ir.Subject = core.CleanString(ir.Subject)
	ir.Topic = core.CleanString(ir.Topic)
	return validate.Struct(ir)
}
