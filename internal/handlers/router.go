package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	resultHandler  *ResultHandler
	sessions       *services.SessionService
}

func NewHandlerManager(
	sessionService *services.SessionService,
	exportService *services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(sessionService, validator, logger),
		resultHandler:  NewResultHandler(exportService, logger),
		sessions:       sessionService,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.CloseSession)
			sessions.PUT("/:id/answer", hm.sessionHandler.SetAnswer)
			sessions.POST("/:id/options", hm.sessionHandler.TapOption)
			sessions.POST("/:id/submit", hm.sessionHandler.Submit)
			sessions.POST("/:id/finish", hm.sessionHandler.Finish)
			sessions.POST("/:id/previous", hm.sessionHandler.Previous)
			sessions.POST("/:id/interactions", hm.sessionHandler.RecordInteraction)
			sessions.POST("/:id/audio", hm.sessionHandler.PlayAudio)
			sessions.POST("/:id/deactivate", hm.sessionHandler.Deactivate)
			sessions.POST("/:id/activate", hm.sessionHandler.Activate)
			sessions.POST("/:id/result", hm.sessionHandler.SubmitResult)
		}

		results := v1.Group("/results")
		{
			results.GET("/:exercise_id", hm.resultHandler.ExportExerciseResults)
			results.GET("/:exercise_id/:result_id", hm.resultHandler.GetResult)
			results.GET("/:exercise_id/:result_id/export", hm.resultHandler.ExportResult)
		}
	}
}

func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "exercise-service",
		"sessions": hm.sessions.Count(),
	})
}
