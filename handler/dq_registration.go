package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/services"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/utils"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/validator"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type DqRegistrationHandler struct {
	service services.DqRegistrationService
	router  *chi.Mux
}

func NewDqRegistrationHandler(service services.DqRegistrationService) *DqRegistrationHandler {
	h := &DqRegistrationHandler{
		service: service,
	}

	r := chi.NewRouter()
	r.Get("/", h.handleListRegistrations)
	r.Post("/", h.handleCreateRegistration)
	r.Get("/{dataSourceName}", h.handleGetRegistration)
	r.Put("/{dataSourceName}", h.handleReplaceRegistration)
	r.Patch("/{dataSourceName}", h.handlePatchRegistration)
	r.Delete("/{dataSourceName}", h.handleDeleteRegistration)

	h.router = r
	return h
}

func (h *DqRegistrationHandler) Router() *chi.Mux {
	return h.router
}

// @Summary List registrations
// @Tags registration
// @Produce json
// @Success 200 {array} models.DqRegistration
// @Success 204
// @Failure 500 {object} models.ErrorResponse
// @Router /registration [get]
func (h *DqRegistrationHandler) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	log.Debug().Msg("List registrations")

	registrations, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(registrations) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	utils.WriteJSON(w, http.StatusOK, registrations)
}

// @Summary Get a registration
// @Tags registration
// @Produce json
// @Param dataSourceName path string true "Data source name"
// @Success 200 {object} models.DqRegistration
// @Failure 404 {object} models.ErrorResponse
// @Router /registration/{dataSourceName} [get]
func (h *DqRegistrationHandler) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	name := dataSourceNameParam(r)
	log.Debug().Str("dataSourceName", name).Msg("Get registration")

	found, err := h.service.Get(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	registration, ok := found.Get()
	if !ok {
		writeServiceError(w, fmt.Errorf("%w: %s", common.ErrRegistrationNotFound, name))
		return
	}

	utils.WriteJSON(w, http.StatusOK, registration)
}

// @Summary Create a registration
// @Tags registration
// @Accept json
// @Produce json
// @Param registration body models.DqRegistration true "Registration"
// @Success 201 {object} models.DqRegistration
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /registration [post]
func (h *DqRegistrationHandler) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	registration, err := decodeRegistration(r, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debug().Str("dataSourceName", registration.DataSourceName).Msg("Create registration")

	created, err := h.service.Create(r.Context(), registration)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, created)
}

// @Summary Replace a registration
// @Tags registration
// @Accept json
// @Produce json
// @Param dataSourceName path string true "Data source name"
// @Param registration body models.DqRegistration true "Registration"
// @Success 200 {object} models.DqRegistration
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /registration/{dataSourceName} [put]
func (h *DqRegistrationHandler) handleReplaceRegistration(w http.ResponseWriter, r *http.Request) {
	name := dataSourceNameParam(r)
	log.Debug().Str("dataSourceName", name).Msg("Replace registration")

	registration, err := decodeRegistration(r, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	replaced, err := h.service.Replace(r.Context(), registration)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, replaced)
}

// @Summary Patch a registration
// @Description Only supplied fields change. Negative counts are treated as not supplied.
// @Tags registration
// @Accept json
// @Produce json
// @Param dataSourceName path string true "Data source name"
// @Param patch body models.DqRegistrationPatch true "Fields to change"
// @Success 200 {object} models.DqRegistration
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /registration/{dataSourceName} [patch]
func (h *DqRegistrationHandler) handlePatchRegistration(w http.ResponseWriter, r *http.Request) {
	name := dataSourceNameParam(r)
	log.Debug().Str("dataSourceName", name).Msg("Patch registration")

	var patch models.DqRegistrationPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		writeServiceError(w, err)
		return
	}
	patch.DataSourceName = name

	patched, err := h.service.Patch(r.Context(), name, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, patched)
}

// @Summary Delete a registration
// @Tags registration
// @Param dataSourceName path string true "Data source name"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /registration/{dataSourceName} [delete]
func (h *DqRegistrationHandler) handleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	name := dataSourceNameParam(r)
	log.Debug().Str("dataSourceName", name).Msg("Delete registration")

	if err := h.service.Delete(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeRegistration decodes a full record on top of the unset defaults.
// A non-empty pathName replaces whatever name the body carries.
func decodeRegistration(r *http.Request, pathName string) (models.DqRegistration, error) {
	registration := models.NewDqRegistration("")
	if err := utils.DecodeJSON(r, &registration); err != nil {
		return models.DqRegistration{}, err
	}
	if pathName != "" {
		registration.DataSourceName = pathName
	}

	if err := validator.Validate(registration); err != nil {
		return models.DqRegistration{}, fmt.Errorf("%w: %v", common.ErrInvalidRegistration, err)
	}
	return registration, nil
}

func dataSourceNameParam(r *http.Request) string {
	raw := chi.URLParam(r, "dataSourceName")
	// chi routes on RawPath when the request carries one
	if r.URL.RawPath == "" {
		return raw
	}
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrRegistrationNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrDuplicateRegistration):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrInvalidRegistration):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("Registration request failed")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to process registration request")
	}
}
