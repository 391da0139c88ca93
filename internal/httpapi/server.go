package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmsettings/internal/modelcard"
	"llmsettings/internal/modellist"
	"llmsettings/pkg/types"
)

// SettingsService is the settings store surface used by the HTTP layer.
type SettingsService interface {
	Settings() types.Settings
	ProviderConfig(provider types.ProviderKey) (types.ProviderConfig, bool)
	SetModelProviderConfig(ctx context.Context, provider types.ProviderKey, patch types.ProviderConfigPatch) error
	ToggleProviderEnabled(ctx context.Context, provider types.ProviderKey, enabled bool) error
	DispatchCustomModelCards(ctx context.Context, provider types.ProviderKey, op modelcard.Op) error
	RemoveEnabledModel(ctx context.Context, provider types.ProviderKey, modelID string) error
	Editing() *types.EditingTarget
	ToggleEditingCustomModelCard(target *types.EditingTarget)
}

// ModelListService is the remote model list cache surface.
type ModelListService interface {
	Fetch(ctx context.Context, provider types.ProviderKey, autoFetch bool) modellist.Result
	Revalidate(ctx context.Context, provider types.ProviderKey, autoFetch bool) modellist.Result
	Invalidate(provider types.ProviderKey)
}

// Service defines the methods required by the HTTP API layer.
type Service interface {
	SettingsService
	ModelListService
	Ready() bool
}

var validate = validator.New()

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/providers", h.listProviders)
	r.Route("/providers/{provider}", func(r chi.Router) {
		r.Get("/", h.getProvider)
		r.Patch("/", h.patchProvider)
		r.Put("/enabled", h.putEnabled)
		r.Post("/custom-models", h.postCustomModels)
		r.Delete("/enabled-models/{model}", h.deleteEnabledModel)
		r.Get("/models", h.getModels)
		r.Post("/models/revalidate", h.revalidateModels)
		r.Delete("/models", h.invalidateModels)
	})
	r.Get("/editing", h.getEditing)
	r.Put("/editing", h.putEditing)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// providerParam resolves {provider}, answering 404 for keys outside the
// known set.
func providerParam(w http.ResponseWriter, r *http.Request) (types.ProviderKey, bool) {
	p := types.ProviderKey(chi.URLParam(r, "provider"))
	if !types.IsKnownProvider(p) {
		writeJSONError(w, http.StatusNotFound, "unknown provider: "+string(p))
		return "", false
	}
	return p, true
}

// decodeBody reads a JSON body into dst and validates it. It answers the
// request itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validateBody(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// validateBody validates the struct behind v, if any. A JSON null decoded
// into a pointer leaves nothing to validate.
func validateBody(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}

// respondMutation answers a settings mutation with the provider's committed
// config, or the mapped error.
func (h *handlers) respondMutation(w http.ResponseWriter, action string, provider types.ProviderKey, err error) {
	observeMutation(action, err)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	cfg, ok := h.svc.ProviderConfig(provider)
	if !ok {
		// the action was skipped because the provider has no entry
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handlers) listProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ProvidersResponse{Providers: h.svc.Settings().LanguageModel})
}

func (h *handlers) getProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	cfg, ok := h.svc.ProviderConfig(p)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no configuration for provider "+string(p))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handlers) patchProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	var req types.ProviderConfigUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	err := h.svc.SetModelProviderConfig(ctx, p, req.Patch())
	h.respondMutation(w, "set_config", p, err)
}

func (h *handlers) putEnabled(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	var req types.EnabledRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	err := h.svc.ToggleProviderEnabled(ctx, p, *req.Enabled)
	h.respondMutation(w, "toggle_enabled", p, err)
}

func (h *handlers) postCustomModels(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	var req types.CustomModelCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	err := h.svc.DispatchCustomModelCards(ctx, p, customModelOp(req))
	h.respondMutation(w, "custom_models_"+req.Op, p, err)
}

// customModelOp converts a validated request into a reducer operation.
func customModelOp(req types.CustomModelCardRequest) modelcard.Op {
	switch req.Op {
	case "add":
		return modelcard.Add{Card: *req.Card}
	case "update":
		return modelcard.Update{ID: req.ID, Patch: *req.Patch}
	case "delete":
		return modelcard.Delete{ID: req.ID}
	default:
		return modelcard.Replace{Cards: req.Cards}
	}
}

func (h *handlers) deleteEnabledModel(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	err := h.svc.RemoveEnabledModel(ctx, p, chi.URLParam(r, "model"))
	h.respondMutation(w, "remove_enabled_model", p, err)
}

func (h *handlers) getEditing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.EditingResponse{Editing: h.svc.Editing()})
}

func (h *handlers) putEditing(w http.ResponseWriter, r *http.Request) {
	var target *types.EditingTarget
	if !decodeBody(w, r, &target) {
		return
	}
	if target != nil && !types.IsKnownProvider(target.Provider) {
		writeJSONError(w, http.StatusBadRequest, "unknown provider: "+string(target.Provider))
		return
	}
	h.svc.ToggleEditingCustomModelCard(target)
	writeJSON(w, http.StatusOK, types.EditingResponse{Editing: h.svc.Editing()})
}

// autoFetchParam reads ?auto_fetch=, defaulting to true.
func autoFetchParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	v := r.URL.Query().Get("auto_fetch")
	if v == "" {
		return true, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "auto_fetch must be a boolean")
		return false, false
	}
	return b, true
}

func (h *handlers) getModels(w http.ResponseWriter, r *http.Request) {
	h.serveModels(w, r, h.svc.Fetch)
}

func (h *handlers) revalidateModels(w http.ResponseWriter, r *http.Request) {
	h.serveModels(w, r, h.svc.Revalidate)
}

func (h *handlers) serveModels(w http.ResponseWriter, r *http.Request, get func(context.Context, types.ProviderKey, bool) modellist.Result) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	auto, ok := autoFetchParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := handlerContext(r)
	defer cancel()
	res := get(ctx, p, auto)
	writeJSON(w, modelListStatus(res), modelListResponse(res))
}

func (h *handlers) invalidateModels(w http.ResponseWriter, r *http.Request) {
	p, ok := providerParam(w, r)
	if !ok {
		return
	}
	h.svc.Invalidate(p)
	w.WriteHeader(http.StatusNoContent)
}

func modelListStatus(res modellist.Result) int {
	switch res.State {
	case modellist.StateFailed:
		return http.StatusBadGateway
	case modellist.StatePending:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}

func modelListResponse(res modellist.Result) types.ModelListResponse {
	out := types.ModelListResponse{
		Provider:  res.Key.Provider,
		AutoFetch: res.Key.AutoFetch,
		State:     string(res.State),
		Models:    res.Data,
	}
	if out.Models == nil {
		out.Models = []types.ModelCard{}
	}
	if !res.FetchedAt.IsZero() {
		t := res.FetchedAt
		out.FetchedAt = &t
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
