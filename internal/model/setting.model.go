package model

import "time"

const SettingWhatsAppAPIToken = "whatsapp_api_token"

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
