// Package api exposes the voice-service over HTTP. The handlers are a thin
// boundary: they translate wire payloads into core types, call into the
// staging area, the profile store and the orchestrator, and map the error
// taxonomy onto status codes. No business logic lives here.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/catalog"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/gin-gonic/gin"
)

const uploadFormField = "audio"

// Generator resolves and executes one generation request.
type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationArtifact, error)
}

// Server wires the HTTP routes to the core components.
type Server struct {
	stage     core.ReferenceStage
	profiles  core.ProfileStore
	generator Generator
	outputDir string
	log       *logger.Logger
}

// New creates an API server serving artifacts from outputDir.
func New(
	stage core.ReferenceStage,
	profiles core.ProfileStore,
	generator Generator,
	outputDir string,
	log *logger.Logger,
) *Server {
	return &Server{
		stage:     stage,
		profiles:  profiles,
		generator: generator,
		outputDir: outputDir,
		log:       log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.POST("/api/upload-reference", s.uploadReference)
	router.POST("/api/save-voice", s.saveVoice)
	router.GET("/api/voices", s.listVoices)
	router.GET("/api/all-voices", s.listAllVoices)
	router.PUT("/api/voices/:id/rename", s.renameVoice)
	router.DELETE("/api/voices/:id", s.deleteVoice)
	router.POST("/api/generate", s.generate)
	router.GET("/api/config", s.engineConfig)
	router.GET("/audio/:name", s.serveAudio)

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) uploadReference(c *gin.Context) {
	file, err := c.FormFile(uploadFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})

		return
	}

	opened, openErr := file.Open()
	if openErr != nil {
		s.log.Error("Failed to open uploaded reference: %v", openErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})

		return
	}
	defer opened.Close()

	audio, readErr := io.ReadAll(opened)
	if readErr != nil {
		s.log.Error("Failed to read uploaded reference: %v", readErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})

		return
	}

	stageErr := s.stage.Stage(audio)
	if stageErr != nil {
		s.log.Error("Failed to stage reference: %v", stageErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})

		return
	}

	path, _ := s.stage.StagedPath()
	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

func (s *Server) saveVoice(c *gin.Context) {
	var req saveVoiceRequest

	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Voice name is required"})

		return
	}

	profile, createErr := s.profiles.Create(c.Request.Context(), req.Name, req.RefText)
	if createErr != nil {
		switch {
		case errors.Is(createErr, core.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Voice name is required"})
		case errors.Is(createErr, core.ErrNoReferenceStaged):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No reference audio uploaded"})
		default:
			s.log.Error("Failed to save voice: %v", createErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save voice"})
		}

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "voice": profile})
}

func (s *Server) listVoices(c *gin.Context) {
	profiles, listErr := s.profiles.List()
	if listErr != nil {
		s.log.Error("Failed to list voices: %v", listErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list voices"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"voices": profiles})
}

func (s *Server) listAllVoices(c *gin.Context) {
	profiles, listErr := s.profiles.List()
	if listErr != nil {
		s.log.Error("Failed to list voices: %v", listErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list voices"})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preset": catalog.Speakers(),
		"custom": profiles,
	})
}

func (s *Server) renameVoice(c *gin.Context) {
	var req renameVoiceRequest

	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})

		return
	}

	profile, renameErr := s.profiles.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if renameErr != nil {
		switch {
		case errors.Is(renameErr, core.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		case errors.Is(renameErr, core.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Voice not found"})
		default:
			s.log.Error("Failed to rename voice: %v", renameErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename voice"})
		}

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "voice": profile})
}

func (s *Server) deleteVoice(c *gin.Context) {
	deleteErr := s.profiles.Delete(c.Request.Context(), c.Param("id"))
	if deleteErr != nil {
		if errors.Is(deleteErr, core.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voice not found"})

			return
		}

		s.log.Error("Failed to delete voice: %v", deleteErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voice"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest

	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})

		return
	}

	coreReq, convertErr := toGenerationRequest(req)
	if convertErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": convertErr.Error()})

		return
	}

	artifact, generateErr := s.generator.Generate(c.Request.Context(), coreReq)
	if generateErr != nil {
		status := http.StatusInternalServerError

		switch {
		case isValidationError(generateErr):
			status = http.StatusBadRequest
		case errors.Is(generateErr, core.ErrProfileNotFound):
			status = http.StatusNotFound
		}

		s.log.Error("Generation failed: %v", generateErr)
		c.JSON(status, gin.H{"success": false, "error": generateErr.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "audioUrl": artifact.URL})
}

func (s *Server) engineConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes":     catalog.Modes(),
		"models":    catalog.Models(),
		"speakers":  catalog.Speakers(),
		"languages": catalog.Languages(),
	})
}

// serveAudio returns one generated artifact. The name is reduced to its base
// so the route cannot escape the output directory.
func (s *Server) serveAudio(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	c.File(filepath.Join(s.outputDir, name))
}

// toGenerationRequest converts the flat wire payload into the sum-typed core
// request. An empty mode means custom_voice, and an empty speaker falls back
// to the engine's default preset, matching the original web UI behavior.
func toGenerationRequest(req generateRequest) (core.GenerationRequest, error) {
	mode := core.Mode(req.Mode)
	if req.Mode == "" {
		mode = core.ModeCustomVoice
	}

	out := core.GenerationRequest{
		Text:        req.Text,
		ModelSize:   core.ModelSize(req.Model),
		Language:    req.Language,
		CustomVoice: nil,
		VoiceClone:  nil,
		VoiceDesign: nil,
	}

	switch mode {
	case core.ModeCustomVoice:
		speaker := req.Speaker
		if speaker == "" {
			speaker = "Ryan"
		}

		out.CustomVoice = &core.CustomVoiceSpec{
			SpeakerID:        speaker,
			StyleInstruction: req.Instruct,
		}
	case core.ModeVoiceClone:
		out.VoiceClone = &core.VoiceCloneSpec{
			SavedVoiceID:  req.SavedVoiceID,
			ReferenceText: req.RefText,
		}
	case core.ModeVoiceDesign:
		out.VoiceDesign = &core.VoiceDesignSpec{
			Description: req.VoiceDescription,
		}
	default:
		return core.GenerationRequest{}, core.ErrModeRequired
	}

	return out, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrTextRequired) ||
		errors.Is(err, core.ErrModeRequired) ||
		errors.Is(err, core.ErrUnknownSpeaker)
}
