package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/internal/store"
	"github.com/gin-gonic/gin"
)

// instructionRequest accepts either plain step text, parsed line by line,
// or structured steps.
type instructionRequest struct {
	Title string             `json:"title"`
	Text  string             `json:"text"`
	Steps []instruction.Step `json:"steps"`
}

func (r instructionRequest) instruction(id string) (instruction.Instruction, error) {
	inst := instruction.Instruction{
		ID:    id,
		Title: strings.TrimSpace(r.Title),
		Steps: r.Steps,
	}
	if r.Text != "" {
		inst.Steps = instruction.ParseSteps(r.Text)
	}

	return inst, inst.Validate()
}

func (s *Server) handleList(c *gin.Context) {
	all, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instructions": all})
}

func (s *Server) handleGet(c *gin.Context) {
	inst, err := store.Get(c.Request.Context(), s.store, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, inst)
}

func (s *Server) handleCreate(c *gin.Context) {
	s.save(c, store.NewID(), http.StatusCreated)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")
	if _, err := store.Get(c.Request.Context(), s.store, id); err != nil {
		s.fail(c, err)
		return
	}

	s.save(c, id, http.StatusOK)
}

func (s *Server) save(c *gin.Context, id string, status int) {
	var req instructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, err := req.instruction(id)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Save(c.Request.Context(), inst); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("Saved instruction", "id", inst.ID, "steps", len(inst.Steps))
	c.JSON(status, inst)
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if _, err := store.Get(c.Request.Context(), s.store, id); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	s.logger.Error("Store request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
}
