package controllers

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"io"
	"net/http"
	"studymail/internal/models"
	"studymail/internal/providers"
	"studymail/internal/services"
	"studymail/internal/structures"
	"time"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.WatcherServiceInterface
	token   string
	now     func() time.Time
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.WatcherServiceInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		token:   conf.Upload.Token,
		now:     time.Now,
	}
}

type okResponse struct {
	Ok      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	SentFor string `json:"sent_for,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, okResponse{Ok: false, Error: msg})
}

func (ac *ApiController) authorize(token string) error {
	if ac.token == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(ac.token)) != 1 {
		return models.ErrAuthorization
	}
	return nil
}

// parseSnapshot checks that data is an object carrying every required field
// and that the values pass validation.
func parseSnapshot(data json.RawMessage) (models.TimerSnapshot, error) {
	var snapshot models.TimerSnapshot

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return snapshot, fmt.Errorf("%w: data must be an object", models.ErrValidation)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return snapshot, fmt.Errorf("%w: data must be an object", models.ErrValidation)
	}
	for _, name := range models.RequiredSnapshotFields {
		if _, ok := fields[name]; !ok {
			return snapshot, fmt.Errorf("%w: data.%s is required", models.ErrValidation, name)
		}
	}

	if err := json.Unmarshal(trimmed, &snapshot); err != nil {
		return snapshot, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	v := validate.Struct(&snapshot)
	if !v.Validate() {
		return snapshot, fmt.Errorf("%w: %s", models.ErrValidation, v.Errors.One())
	}
	return snapshot, nil
}

func (ac *ApiController) UploadState(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := ac.authorize(payload.Token); err != nil {
		ac.logger.Warnf(providers.TypePost, "Upload rejected from %s: invalid token", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	snapshot, err := parseSnapshot(payload.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = ac.service.Upload(snapshot); err != nil {
		ac.logger.Errorf(providers.TypePost, "Unable to store upload: %s", err)
		writeError(w, http.StatusInternalServerError, "unable to store state")
		return
	}

	ac.logger.Infof(providers.TypePost, "Upload received: %s %ds %d coins", snapshot.Date, snapshot.ElapsedSeconds, snapshot.RewardUnits)
	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

// ForceSend mails the stored snapshot for the server's current date without
// touching detector state. It takes the same {"token": ...} body as uploads:
// when an upload token is configured a missing or wrong token gets 403, and
// with no token configured an empty body is accepted.
func (ac *ApiController) ForceSend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := ac.authorize(payload.Token); err != nil {
		ac.logger.Warnf(providers.TypePost, "Force send rejected from %s: invalid token", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	sentFor, err := ac.service.ForceSend(r.Context(), ac.now())
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, "no data")
	case err != nil:
		ac.logger.Errorf(providers.TypePost, "Force send for %s failed: %s", sentFor, err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, okResponse{Ok: true, SentFor: sentFor})
	}
}
