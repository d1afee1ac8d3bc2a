// Package app содержит HTTP-обработчики сервиса коротких ссылок.
package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tempizhere/linkstat/internal/i18n"
	"github.com/tempizhere/linkstat/internal/middleware"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/service"
)

// Поля формы POST /shorten; userId принимается для совместимости со старой формой
const (
	formOriginalURL = "originalUrl"
	formCreatorID   = "creatorId"
	formUserID      = "userId"
)

// App содержит хендлеры и зависимости
type App struct {
	svc       *service.Service
	localizer *i18n.Localizer
	logger    *zap.Logger
}

// NewApp создаёт новое приложение
func NewApp(svc *service.Service, localizer *i18n.Localizer, logger *zap.Logger) *App {
	return &App{svc: svc, localizer: localizer, logger: logger}
}

// Router собирает маршруты и middleware
func (a *App) Router(subnet *middleware.TrustedSubnet) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.ClientIPMiddleware(subnet, a.logger))
	r.Use(middleware.LoggingMiddleware(a.logger))
	r.Use(chimw.Compress(5, "application/json", "text/plain"))

	r.Get("/ping", a.HandlePing)
	r.Post("/shorten", a.HandleShorten)
	r.Post("/api/shorten", a.HandleJSONShorten)
	r.Get("/stats/{id}", a.HandleStats)
	r.Get("/api/stats/{id}", a.HandleStats)
	r.Get("/{id}", a.HandleRedirect)
	return r
}

// HandleShorten обрабатывает POST-запросы на "/shorten" с формой originalUrl, creatorId.
// Возвращает короткий ID текстом: 201 для новой ссылки, 200 для уже существующей.
func (a *App) HandleShorten(w http.ResponseWriter, r *http.Request) {
	originalURL := r.PostFormValue(formOriginalURL)
	creatorID := r.PostFormValue(formCreatorID)
	if creatorID == "" {
		creatorID = r.PostFormValue(formUserID)
	}

	res, err := a.svc.Shorten(r.Context(), middleware.ClientIP(r), originalURL, creatorID)
	if err != nil {
		status, msg := a.describeError(w, r, err)
		http.Error(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(shortenStatus(res))
	if _, err := w.Write([]byte(res.ShortID)); err != nil {
		a.logger.Error("Failed to write response", zap.Error(err))
	}
}

// HandleJSONShorten обрабатывает POST-запросы на "/api/shorten"
func (a *App) HandleJSONShorten(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		a.writeJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "Content-Type must be application/json"})
		return
	}
	var req models.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON"})
		return
	}

	res, err := a.svc.Shorten(r.Context(), middleware.ClientIP(r), req.URL, req.CreatorID)
	if err != nil {
		a.writeJSONError(w, r, err)
		return
	}
	a.writeJSONResponse(w, shortenStatus(res), models.ShortenResponse{Result: res.ShortURL, ShortID: res.ShortID})
}

// HandleRedirect обрабатывает GET-запросы на "/{id}"
func (a *App) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	originalURL, err := a.svc.Resolve(r.Context(), id, middleware.ClientIP(r))
	if err != nil {
		status, msg := a.describeError(w, r, err)
		http.Error(w, msg, status)
		return
	}
	http.Redirect(w, r, originalURL, http.StatusFound)
}

// HandleStats обрабатывает GET-запросы на "/stats/{id}" и "/api/stats/{id}"
func (a *App) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeJSONError(w, r, err)
		return
	}
	a.writeJSONResponse(w, http.StatusOK, stats)
}

// HandlePing обрабатывает GET-запросы на "/ping"
func (a *App) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Ping(r.Context()); err != nil {
		http.Error(w, "Database connection failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func shortenStatus(res models.ShortenResult) int {
	if res.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// describeError сопоставляет ошибку сервиса с HTTP-статусом и переведённым сообщением.
// Для превышения лимита выставляет заголовок Retry-After.
func (a *App) describeError(w http.ResponseWriter, r *http.Request, err error) (int, string) {
	lang := r.Header.Get("Accept-Language")

	var rle *service.RateLimitError
	switch {
	case errors.As(err, &rle):
		seconds := int(rle.RetryAfter(time.Now()).Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		return http.StatusTooManyRequests, a.rateLimitMessage(lang, rle)
	case errors.Is(err, service.ErrEmptyURL):
		return http.StatusBadRequest, a.localizer.Sprintf(lang, i18n.MsgEnterURL)
	case errors.Is(err, service.ErrURLTooLong):
		return http.StatusBadRequest, a.localizer.Count(lang, i18n.MsgURLTooLong, service.MaxURLLength)
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, a.localizer.Sprintf(lang, i18n.MsgInvalidURL)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, a.localizer.Sprintf(lang, i18n.MsgLinkNotFound)
	default:
		a.logger.Error("Request failed", zap.String("uri", r.RequestURI), zap.Error(err))
		return http.StatusInternalServerError, a.localizer.Sprintf(lang, i18n.MsgInternal)
	}
}

func (a *App) rateLimitMessage(lang string, rle *service.RateLimitError) string {
	if rle.Scope == service.ScopeRedirect {
		return a.localizer.Count(lang, i18n.MsgRedirectLimit, rle.Limit)
	}
	return a.localizer.Count(lang, i18n.MsgShortenLimit, rle.Limit)
}

func (a *App) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := a.describeError(w, r, err)
	a.writeJSONResponse(w, status, models.ErrorResponse{Error: msg})
}

// writeJSONResponse пишет JSON-ответ с проверкой ошибок
func (a *App) writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("Failed to encode JSON", zap.Error(err))
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		a.logger.Error("Failed to write response", zap.Error(err))
	}
}
