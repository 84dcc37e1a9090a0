package handlers

import (
	"net/http"

	"quizhub/models"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService *services.QuizService
}

func NewQuizHandler(quizService *services.QuizService) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
	}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Compose(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) GetUserQuizzes(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id", "Invalid user ID")
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByUser(c.Request.Context(), p, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	quizID, ok := pathID(c, "id", "Invalid quiz ID")
	if !ok {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), p, quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	quizID, ok := pathID(c, "id", "Invalid quiz ID")
	if !ok {
		return
	}

	var patch models.QuizPatch
	if !bindJSON(c, &patch) {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), p, quizID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	quizID, ok := pathID(c, "id", "Invalid quiz ID")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), p, quizID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
