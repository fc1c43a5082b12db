package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stagecoach/internal/database"
	"stagecoach/internal/models"
	"stagecoach/internal/pipeline"
	"stagecoach/internal/storage"
)

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// PerformanceSource is the slice of the performance repository the API
// reads from.
type PerformanceSource interface {
	GetByID(ctx context.Context, id string) (*models.Performance, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Performance, error)
}

// UserSource resolves bearer credentials to accounts.
type UserSource interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
}

// Runner executes the upload-and-analysis pipeline for one video.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*models.Performance, error)
}

// ChatService answers free-form coaching questions.
type ChatService interface {
	Chat(ctx context.Context, message, coachType string) (string, error)
}

// CheckoutService creates payment provider checkout sessions.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, priceID, userID, returnURL string) (string, error)
}

type App struct {
	Storage       storage.Storage
	Users         UserSource
	Performances  PerformanceSource
	Pipeline      Runner
	Chat          ChatService
	Checkout      CheckoutService
	PriceID       string
	ReturnURL     string
	MaxUploadSize int64
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (app *App) UploadPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if r.ContentLength > app.MaxUploadSize {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") && contentType != "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".mp4" && ext != ".webm" && ext != ".mov" {
			respondError(w, http.StatusBadRequest, "Only video files are allowed")
			return
		}
		contentType = "video/mp4"
	}

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	methodology := user.Methodology
	if m := r.FormValue("methodology"); m != "" {
		methodology = models.MethodologyFromString(m)
	}

	performance, err := app.Pipeline.Run(r.Context(), pipeline.Input{
		UserID:      user.ID,
		Title:       title,
		File:        file,
		Size:        header.Size,
		ContentType: contentType,
		Methodology: methodology,
	})
	if err != nil {
		log.Printf("[API] Pipeline failed for user %s: %v", user.ID, err)
		respondError(w, http.StatusBadGateway, "Failed to process video")
		return
	}

	respondJSON(w, http.StatusCreated, performance)
}

func (app *App) ListPerformancesHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	performances, err := app.Performances.ListByUser(r.Context(), user.ID)
	if err != nil {
		log.Printf("[API] Failed to list performances for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to load performances")
		return
	}

	respondJSON(w, http.StatusOK, performances)
}

func (app *App) GetPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id := chi.URLParam(r, "id")
	performance, err := app.Performances.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Performance not found")
			return
		}
		log.Printf("[API] Failed to load performance %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to load performance")
		return
	}

	if performance.UserID != user.ID {
		respondError(w, http.StatusNotFound, "Performance not found")
		return
	}

	respondJSON(w, http.StatusOK, performance)
}

type chatRequest struct {
	Message   string `json:"message"`
	CoachType string `json:"coachType"`
}

func (app *App) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := app.Chat.Chat(r.Context(), req.Message, req.CoachType)
	if err != nil {
		log.Printf("[API] Chat request failed: %v", err)
		respondError(w, http.StatusBadGateway, "Coach is unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type checkoutRequest struct {
	PriceID   string `json:"priceId"`
	ReturnURL string `json:"returnUrl"`
}

func (app *App) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	req := checkoutRequest{PriceID: app.PriceID, ReturnURL: app.ReturnURL}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.PriceID == "" {
			req.PriceID = app.PriceID
		}
		if req.ReturnURL == "" {
			req.ReturnURL = app.ReturnURL
		}
	}

	url, err := app.Checkout.CreateCheckoutSession(r.Context(), req.PriceID, user.ID, req.ReturnURL)
	if err != nil {
		log.Printf("[API] Checkout session failed for user %s: %v", user.ID, err)
		respondError(w, http.StatusBadGateway, "Failed to start checkout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (app *App) StreamVideoHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	file, err := app.Storage.OpenFile(key)
	if err != nil {
		http.Error(w, "Video file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	modTime := time.Now()
	if statter, ok := file.(interface{ Stat() (os.FileInfo, error) }); ok {
		if stat, err := statter.Stat(); err == nil {
			modTime = stat.ModTime()
		}
	}

	w.Header().Set("Content-Type", "video/mp4")

	// ServeContent handles Range requests automatically, including
	// Accept-Ranges, Content-Length, and 206 Partial Content.
	http.ServeContent(w, r, key, modTime, file)
}
