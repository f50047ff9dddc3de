package adapters

import (
	"context"
	"fmt"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	. "formsentry/internal/models"
	"sort"
	"sync"
)

// Definition describes one form engine integration.
type Definition struct {
	Name           string
	FormType       FormType
	NativeTables   []string
	AntispamChecks []string
}

// Adapter is the common contract every engine integration implements:
// suppress anti-automation checks, reroute the notification email, map the
// engine's native submission shape to the canonical one, and remove the
// engine's own persisted copy.
type Adapter interface {
	Definition() Definition
	SuppressAntispam(tc *TestContext) []string
	RedirectEmail(tc *TestContext, msg EmailMessage) EmailMessage
	Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error)
	DeleteNative(ctx context.Context, raw RawSubmission) error
}

// Registry resolves the adapter for the engine a submission came from.
// Adapters register once at startup; the pipeline only ever sees the
// Adapter interface.
type Registry struct {
	mu     sync.RWMutex
	byType map[FormType]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byType: map[FormType]Adapter{}}
	for _, a := range adapters {
		_ = r.Register(a)
	}
	return r
}

// DefaultRegistry wires every supported engine.
func DefaultRegistry(db database.DB) *Registry {
	return NewRegistry(
		NewGravityForms(db),
		NewContactForm7(db),
		NewFluentForms(db),
		NewWPForms(db),
		NewNinjaForms(db),
		NewFormidable(db),
		NewForminator(db),
		NewWSForm(db),
		NewElementor(db),
	)
}

func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter is nil")
	}

	def := adapter.Definition()
	if def.FormType == "" {
		return fmt.Errorf("form type is required")
	}
	if _, ok := ParseFormType(string(def.FormType)); !ok {
		return fmt.Errorf("unknown form type %q", def.FormType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byType[def.FormType]; exists {
		return fmt.Errorf("adapter already registered for %s", def.FormType)
	}
	r.byType[def.FormType] = adapter
	return nil
}

func (r *Registry) Resolve(formType FormType) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byType[formType]
	return a, ok
}

func (r *Registry) Types() []FormType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]FormType, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// baseAdapter carries the behavior shared by every engine: anti-spam
// suppression gated on an active test context, and the email rewrite.
type baseAdapter struct {
	def Definition
	db  database.DB
	log logger.Logger
}

func newBase(def Definition, db database.DB) baseAdapter {
	return baseAdapter{
		def: def,
		db:  db,
		log: logger.New(def.Name + "Adapter"),
	}
}

func (b baseAdapter) Definition() Definition {
	return b.def
}

// SuppressAntispam names the engine checks to disable for this request.
// Without an active test context nothing is suppressed; a normal visitor
// always faces the site's real defenses.
func (b baseAdapter) SuppressAntispam(tc *TestContext) []string {
	if !tc.Active() {
		return nil
	}
	return b.def.AntispamChecks
}

// RedirectEmail reroutes the notification to the test harness. CC and BCC
// are always stripped so no copy reaches real staff addresses. With
// SuppressReceipt the recipient list is emptied entirely; original
// recipients must never receive test traffic.
func (b baseAdapter) RedirectEmail(tc *TestContext, msg EmailMessage) EmailMessage {
	if !tc.Active() {
		return msg
	}

	msg.CC = nil
	msg.BCC = nil

	if tc.SuppressReceipt || tc.RecipientOverride == "" {
		msg.To = nil
		return msg
	}

	msg.To = []string{tc.RecipientOverride}
	return msg
}

func (b baseAdapter) execDelete(ctx context.Context, query string, args ...any) error {
	return b.db.SQLWithContext(ctx).Exec(query, args...).Error
}
