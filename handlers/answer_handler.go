package handlers

import (
	"net/http"

	"quizhub/models"
	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	answerService *services.AnswerService
}

func NewAnswerHandler(answerService *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
	}
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req services.NewAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.answerService.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, answer)
}

func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	answerID, ok := pathID(c, "id", "Invalid answer ID")
	if !ok {
		return
	}

	answer, err := h.answerService.Get(c.Request.Context(), p, answerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

func (h *AnswerHandler) GetQuestionAnswers(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	questionID, ok := pathID(c, "question_id", "Invalid question ID")
	if !ok {
		return
	}

	question, err := h.answerService.ListByQuestion(c.Request.Context(), p, questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	answerID, ok := pathID(c, "id", "Invalid answer ID")
	if !ok {
		return
	}

	var patch models.AnswerPatch
	if !bindJSON(c, &patch) {
		return
	}

	answer, err := h.answerService.Update(c.Request.Context(), p, answerID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}
	answerID, ok := pathID(c, "id", "Invalid answer ID")
	if !ok {
		return
	}

	if err := h.answerService.Delete(c.Request.Context(), p, answerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}
