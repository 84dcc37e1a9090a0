package routes

import (
	"net/http"

	"quizhub/handlers"
	"quizhub/middleware"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	quizHandler *handlers.QuizHandler,
	questionHandler *handlers.QuestionHandler,
	answerHandler *handlers.AnswerHandler,
) {
	// Public routes
	router.POST("/users/sign-up", authHandler.Register)
	router.POST("/login/access-token", authHandler.Login)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", authHandler.Me)
			users.GET("/:id", userHandler.GetUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.PATCH("/update-password/:id", userHandler.UpdatePassword)
		}

		quizzes := protected.Group("/quizzes")
		{
			quizzes.POST("/create-quiz", quizHandler.CreateQuiz)
			quizzes.GET("/user/:user_id", quizHandler.GetUserQuizzes)
			quizzes.GET("/:id", quizHandler.GetQuizByID)
			quizzes.PATCH("/:id", quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
		}

		questions := protected.Group("/questions")
		{
			questions.POST("/", questionHandler.CreateQuestion)
			questions.GET("/quiz/:quiz_id", questionHandler.GetQuizQuestions)
			questions.GET("/:id", questionHandler.GetQuestion)
			questions.PATCH("/:id", questionHandler.UpdateQuestion)
			questions.DELETE("/:id", questionHandler.DeleteQuestion)
		}

		answers := protected.Group("/answers")
		{
			answers.POST("/", answerHandler.CreateAnswer)
			answers.GET("/question/:question_id", answerHandler.GetQuestionAnswers)
			answers.GET("/:id", answerHandler.GetAnswer)
			answers.PATCH("/:id", answerHandler.UpdateAnswer)
			answers.DELETE("/:id", answerHandler.DeleteAnswer)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
