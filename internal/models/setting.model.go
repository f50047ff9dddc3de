package models

// Setting is a durable key/value option row. Suppression latches and
// per-form recipient overrides live here so they survive across requests
// and test runs until explicitly toggled off.
type Setting struct {
	BaseModel
	Key   string `gorm:"type:varchar(255);not null;uniqueIndex" json:"key"`
	Value string `gorm:"type:text"                              json:"value"`
}

const (
	SettingDisableEmailReceipt = "disable_email_receipt"
	SettingDisableWebhooks     = "disable_webhooks"
	SettingFormRecipientPrefix = "form_recipient:"
)
