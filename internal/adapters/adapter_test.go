package adapters

import (
	"formsentry/internal/database"
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRegistryResolve(t *testing.T) {
	registry := DefaultRegistry(database.DB{})

	for _, formType := range []FormType{
		FormTypeGravityForms, FormTypeCF7, FormTypeFluentForms,
		FormTypeWPForms, FormTypeNinjaForms, FormTypeFormidable,
		FormTypeForminator, FormTypeWSForm, FormTypeElementor,
	} {
		adapter, ok := registry.Resolve(formType)
		assert.True(t, ok, "adapter missing for %s", formType)
		assert.Equal(t, formType, adapter.Definition().FormType)
	}

	_, ok := registry.Resolve(FormType("unknown"))
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(NewGravityForms(database.DB{}))

	err := registry.Register(NewGravityForms(database.DB{}))
	assert.Error(t, err)
}

func TestRegistryRejectsNilAndUnknown(t *testing.T) {
	registry := NewRegistry()

	assert.Error(t, registry.Register(nil))

	bogus := &ninjaFormsAdapter{baseAdapter: newBase(Definition{
		Name: "Bogus", FormType: FormType("bogus"),
	}, database.DB{})}
	assert.Error(t, registry.Register(bogus))
}

func TestRegistryTypesSorted(t *testing.T) {
	registry := DefaultRegistry(database.DB{})

	types := registry.Types()
	assert.Len(t, types, 9)
	for i := 1; i < len(types); i++ {
		assert.Less(t, string(types[i-1]), string(types[i]))
	}
}

func TestSuppressAntispam(t *testing.T) {
	adapter := NewGravityForms(database.DB{})

	t.Run("inactive context suppresses nothing", func(t *testing.T) {
		assert.Nil(t, adapter.SuppressAntispam(&TestContext{}))
		assert.Nil(t, adapter.SuppressAntispam(nil))
	})

	t.Run("active context names the engine checks", func(t *testing.T) {
		tc := &TestContext{TestID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}
		assert.Equal(t, adapter.Definition().AntispamChecks, adapter.SuppressAntispam(tc))
	})
}

func TestRedirectEmail(t *testing.T) {
	adapter := NewContactForm7(database.DB{})

	original := EmailMessage{
		To:      []string{"owner@example.com", "sales@example.com"},
		CC:      []string{"cc@example.com"},
		BCC:     []string{"bcc@example.com"},
		Subject: "New submission",
	}

	tests := []struct {
		name       string
		tc         *TestContext
		expectedTo []string
	}{
		{
			name:       "inactive context leaves the message alone",
			tc:         &TestContext{},
			expectedTo: original.To,
		},
		{
			name: "active context rewrites to exactly the override",
			tc: &TestContext{
				TestID:            "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
				RecipientOverride: "capture@test-mail.example",
			},
			expectedTo: []string{"capture@test-mail.example"},
		},
		{
			name: "suppressed receipt empties the recipient list",
			tc: &TestContext{
				TestID:            "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
				RecipientOverride: "capture@test-mail.example",
				SuppressReceipt:   true,
			},
			expectedTo: nil,
		},
		{
			name: "no override resolves to no recipients",
			tc: &TestContext{
				TestID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			},
			expectedTo: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rewritten := adapter.RedirectEmail(tt.tc, original)

			assert.Equal(t, tt.expectedTo, rewritten.To)
			if tt.tc.Active() {
				assert.Nil(t, rewritten.CC, "CC must always be stripped")
				assert.Nil(t, rewritten.BCC, "BCC must always be stripped")
				for _, to := range rewritten.To {
					assert.NotContains(t, original.To, to,
						"no original recipient may survive the rewrite")
				}
			}
			assert.Equal(t, original.Subject, rewritten.Subject)
		})
	}
}
