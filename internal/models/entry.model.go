package models

import "time"

type FormType string

const (
	FormTypeGravityForms FormType = "gravityforms"
	FormTypeCF7          FormType = "cf7"
	FormTypeFluentForms  FormType = "fluentforms"
	FormTypeNinjaForms   FormType = "ninjaforms"
	FormTypeWPForms      FormType = "wpforms"
	FormTypeFormidable   FormType = "formidable"
	FormTypeForminator   FormType = "forminator"
	FormTypeWSForm       FormType = "wsform"
	FormTypeElementor    FormType = "elementor"
)

func ParseFormType(s string) (FormType, bool) {
	switch FormType(s) {
	case FormTypeGravityForms, FormTypeCF7, FormTypeFluentForms,
		FormTypeNinjaForms, FormTypeWPForms, FormTypeFormidable,
		FormTypeForminator, FormTypeWSForm, FormTypeElementor:
		return FormType(s), true
	}
	return "", false
}

const (
	EntryStatusCaptured = "captured"
	EntryStatusPartial  = "partial"
)

// CapturedEntry is the canonical, engine-agnostic record of one form
// submission. UID is the test id that correlated the submission (or a
// synthesized fallback when none could be resolved).
type CapturedEntry struct {
	BaseUUIDModel
	UID         string    `gorm:"type:varchar(64);not null;index" json:"uid"`
	FormID      string    `gorm:"type:varchar(64);not null"       json:"formId"`
	FormType    FormType  `gorm:"type:varchar(32);not null"       json:"formType"`
	SourceURL   string    `gorm:"type:varchar(512)"               json:"sourceUrl"`
	Status      string    `gorm:"type:varchar(32)"                json:"status"`
	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

// CapturedField is one flattened field of a CapturedEntry. Composite
// values (multi-part names, repeatable fields) are expanded into multiple
// rows with synthesized key suffixes; values are always strings.
type CapturedField struct {
	BaseModel
	EntryID   string `gorm:"type:varchar(64);not null;index" json:"entryId"`
	FormID    string `gorm:"type:varchar(64);not null"       json:"formId"`
	UID       string `gorm:"type:varchar(64);not null;index" json:"uid"`
	MetaKey   string `gorm:"type:varchar(255);not null"      json:"metaKey"`
	MetaValue string `gorm:"type:text"                       json:"metaValue"`
}
