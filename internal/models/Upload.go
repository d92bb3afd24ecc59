package models

import json "github.com/goccy/go-json"

// UploadRequest is the ingress envelope. Data stays raw so the handler can
// tell "not an object" apart from "missing field".
type UploadRequest struct {
	Token string          `json:"token"`
	Data  json.RawMessage `json:"data"`
}

// TokenRequest is the optional body of the force-send trigger.
type TokenRequest struct {
	Token string `json:"token"`
}

// RequiredSnapshotFields lists the keys an upload's data object must carry.
var RequiredSnapshotFields = []string{"date", "today_on_seconds", "coins"}
