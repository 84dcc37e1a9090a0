package handlers

import (
	"net/http"

	"quizhub/models"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req services.NewQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	questionID, ok := pathID(c, "id", "Invalid question ID")
	if !ok {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), p, questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) GetQuizQuestions(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	quizID, ok := pathID(c, "quiz_id", "Invalid quiz ID")
	if !ok {
		return
	}

	quiz, err := h.questionService.ListByQuiz(c.Request.Context(), p, quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	questionID, ok := pathID(c, "id", "Invalid question ID")
	if !ok {
		return
	}

	var patch models.QuestionPatch
	if !bindJSON(c, &patch) {
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), p, questionID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	questionID, ok := pathID(c, "id", "Invalid question ID")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), p, questionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
