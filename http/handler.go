package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/folio"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "image"

type Service interface {
	Register(ctx context.Context, username, password string) (folio.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	WhoAmI(ctx context.Context, token string) (string, error)
	Upload(ctx context.Context, token string, req folio.UploadRequest) (folio.UploadResult, error)
	ListImages(ctx context.Context, host folio.RequestHost) ([]folio.ImageRecord, error)
	ListGallery(ctx context.Context, username string, host folio.RequestHost) ([]folio.ImageRecord, error)
	ListPhysicalFiles(ctx context.Context, host folio.RequestHost) ([]folio.PhysicalFile, error)
	DeleteImage(ctx context.Context, token, filename string) error
	OpenMedia(ctx context.Context, key string) (io.ReadSeekCloser, string, error)
	HealthInfo(ctx context.Context) (folio.HealthInfo, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS          CORSConfig
	MaxUploadSize int64 // Upper bound for upload request bodies in bytes (default: 10 MiB)
}

const defaultMaxUploadSize = 10 << 20

// Used when the corresponding CORSConfig list is empty.
var (
	defaultCORSOrigins = []string{"*"}
	defaultCORSMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Authorization", "Content-Type"}
)

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// Handler provides HTTP handlers for the gallery API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler serving the JSON API under /api and the
// locally stored images under /uploads.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   orDefault(h.config.CORS.AllowedOrigins, defaultCORSOrigins),
			AllowedMethods:   orDefault(h.config.CORS.AllowedMethods, defaultCORSMethods),
			AllowedHeaders:   orDefault(h.config.CORS.AllowedHeaders, defaultCORSHeaders),
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/images", h.handleListImages)
		r.Get("/galleries/{username}", h.handleListGallery)
		r.Get("/files", h.handleListFiles)
		r.Get("/health", h.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(RequireToken)
			r.Get("/me", h.handleMe)
			r.Post("/upload", h.handleUpload)
			r.Delete("/images/{filename}", h.handleDelete)
		})
	})

	r.Get(folio.UploadsPrefix+"{key}", h.handleMedia)

	return r
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type meResponse struct {
	Username string `json:"username"`
}

type uploadResponse struct {
	OK       bool              `json:"ok"`
	File     folio.ImageRecord `json:"file"`
	Degraded bool              `json:"degraded"`
	Warning  string            `json:"warning,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	folio.HealthInfo
}

// decodeCredentials reads a JSON or form encoded username/password pair.
func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Username = r.PostForm.Get("username")
		c.Password = r.PostForm.Get("password")
		return c, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, err
	}
	return c, nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Malformed request body")
		return
	}

	if _, err := h.service.Register(r.Context(), c.Username, c.Password); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Malformed request body")
		return
	}

	token, err := h.service.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			HandleError(w, err)
			return
		}
	}

	_ = WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	username, err := h.service.WhoAmI(r.Context(), TokenFromContext(r.Context()))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, meResponse{Username: username})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)

	req := folio.UploadRequest{Host: RequestHost(r)}

	part, err := findFilePart(r)
	if err != nil {
		HandleError(w, err)
		return
	}
	if part != nil {
		defer func() { _ = part.Close() }()
		req.Content = part
		req.OriginalName = part.FileName()
		req.ContentType = part.Header.Get("Content-Type")
	}

	result, err := h.service.Upload(r.Context(), TokenFromContext(r.Context()), req)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := uploadResponse{OK: true, File: result.Image, Degraded: result.Degraded}
	if degradedErr := result.Err(); degradedErr != nil {
		resp.Warning = "Image kept in local storage; remote upload failed"
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

// findFilePart streams the multipart body up to the image field. It returns
// a nil part when the request carries no file.
func findFilePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil //nolint:nilerr // not a multipart request: no file
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, err
			}
			return nil, nil //nolint:nilerr // malformed body: treated as no file
		}

		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (h *Handler) handleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListImages(r.Context(), RequestHost(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, images)
}

func (h *Handler) handleListGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListGallery(r.Context(), chi.URLParam(r, "username"), RequestHost(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, images)
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListPhysicalFiles(r.Context(), RequestHost(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, files)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if !folio.IsValidKey(filename) {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid filename")
		return
	}

	if err := h.service.DeleteImage(r.Context(), TokenFromContext(r.Context()), filename); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.HealthInfo(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", HealthInfo: info})
}

func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	content, contentType, err := h.service.OpenMedia(r.Context(), key)
	if err != nil {
		if errors.Is(err, folio.ErrNotFound) {
			writeDefaultNotFound(w)
		} else {
			HandleError(w, err)
		}
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, key, time.Time{}, content)
}

// RequestHost returns the scheme and host the client used to reach the
// server, honouring X-Forwarded-Proto and X-Forwarded-Host.
func RequestHost(r *http.Request) folio.RequestHost {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return folio.RequestHost{Scheme: scheme, Host: host}
}
