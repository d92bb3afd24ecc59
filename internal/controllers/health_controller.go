package controllers

import (
	"fmt"
	"net/http"
	"studymail/internal/models"
	"studymail/internal/services"
	"studymail/internal/structures"
	"time"
)

type HealthController struct {
	service   services.WatcherServiceInterface
	conf      *structures.Config
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type statusResponse struct {
	Status          string                `json:"status"`
	ServerTime      string                `json:"server_time"`
	TimerState      *models.TimerSnapshot `json:"timer_state"`
	LastSentForDate *string               `json:"last_sent_for_date"`
	PendingForDate  *string               `json:"pending_for_date"`
}

type envCheckResponse struct {
	SMTPUserSet       bool   `json:"SMTP_USER_set"`
	SMTPPasswordSet   bool   `json:"SMTP_PASSWORD_set"`
	EmailToSet        bool   `json:"EMAIL_TO_set"`
	EmailFromSet      bool   `json:"EMAIL_FROM_set"`
	SendGridAPIKeySet bool   `json:"SENDGRID_API_KEY_set"`
	UploadTokenSet    bool   `json:"UPLOAD_TOKEN_set"`
	SMTPHost          string `json:"SMTP_HOST"`
	SMTPPort          int    `json:"SMTP_PORT"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Health is a liveness probe.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(hc.startTime)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
	})
}

// Status reports the stored snapshot and the last notified date. Read only.
func (hc *HealthController) Status(w http.ResponseWriter, r *http.Request) {
	st := hc.service.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:          "ok",
		ServerTime:      st.ServerTime.Format(time.RFC3339),
		TimerState:      st.Snapshot,
		LastSentForDate: optional(st.LastNotifiedDate),
		PendingForDate:  optional(st.PendingDate),
	})
}

// EnvCheck tells which mail settings are present without revealing them.
func (hc *HealthController) EnvCheck(w http.ResponseWriter, r *http.Request) {
	mail := hc.conf.Mail
	writeJSON(w, http.StatusOK, envCheckResponse{
		SMTPUserSet:       mail.SMTPUser != "",
		SMTPPasswordSet:   mail.SMTPPassword != "",
		EmailToSet:        mail.To != "",
		EmailFromSet:      mail.From != "",
		SendGridAPIKeySet: mail.SendGridAPIKey != "",
		UploadTokenSet:    hc.conf.Upload.Token != "",
		SMTPHost:          mail.SMTPHost,
		SMTPPort:          mail.SMTPPort,
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(conf *structures.Config, service services.WatcherServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		conf:      conf,
		startTime: time.Now(),
	}
}
