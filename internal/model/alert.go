package model

import "time"

// AlertSettings holds a user's SMS alert preferences.
type AlertSettings struct {
	UserID      string    `json:"user_id"`
	Enabled     bool      `json:"enabled"`
	PhoneNumber string    `json:"phone_number"`
	LowStock    bool      `json:"low_stock"`
	OutOfStock  bool      `json:"out_of_stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultAlertSettings returns the settings a user has before saving anything:
// sending disabled, both alert kinds switched on.
func DefaultAlertSettings(userID string) *AlertSettings {
	return &AlertSettings{
		UserID:     userID,
		Enabled:    false,
		LowStock:   true,
		OutOfStock: true,
	}
}
