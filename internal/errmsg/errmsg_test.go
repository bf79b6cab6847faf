package errmsg_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
)

func ko(key errmsg.Key) string { return errmsg.Render(language.Korean, key) }

func TestTranslate_ExactMatch(t *testing.T) {
	got := errmsg.Translate(errmsg.Text("Invalid login credentials"), errmsg.ContextAuth)
	assert.Equal(t, ko(errmsg.KeyInvalidCredentials), got)
}

func TestTranslate_SubstringMatch(t *testing.T) {
	raw := errmsg.Text("Error: INVALID LOGIN CREDENTIALS (code 400)")
	assert.Equal(t, ko(errmsg.KeyInvalidCredentials), errmsg.Translate(raw, errmsg.ContextAuth))
}

func TestTranslate_ContextFallback(t *testing.T) {
	raw := errmsg.Text("some brand new failure")
	assert.Equal(t, ko(errmsg.KeyCreateFailed), errmsg.Translate(raw, errmsg.ContextCreate))
	assert.Equal(t, ko(errmsg.KeyDeleteFailed), errmsg.Translate(raw, errmsg.ContextDelete))
}

func TestTranslate_GenericFallback(t *testing.T) {
	assert.Equal(t, ko(errmsg.KeyUnknown), errmsg.Translate(errmsg.Unknown{Value: 42}, ""))
	assert.Equal(t, ko(errmsg.KeyUnknown), errmsg.Translate(nil, "bogus"))
}

func TestTranslate_BackendErrorByMessage(t *testing.T) {
	err := fmt.Errorf("repo.PlanRepo.Create: %w", &pgconn.PgError{
		Code:    "23505",
		Message: `duplicate key value violates unique constraint "days_trip_id_day_number_key"`,
	})
	raw := errmsg.From(err)

	assert.Equal(t, ko(errmsg.KeyDuplicate), errmsg.Translate(raw, errmsg.ContextCreate))
	assert.Equal(t, errmsg.CategoryDatabase, errmsg.Classify(raw))
}

func TestTranslator_Match(t *testing.T) {
	tr := errmsg.NewTranslator(language.Korean)

	assert.Equal(t, language.English, tr.Match("en-US,en;q=0.9"))
	assert.Equal(t, language.Korean, tr.Match("ko-KR"))
	assert.Equal(t, language.Korean, tr.Match(""))
	assert.Equal(t, language.Korean, tr.Match("fr-FR"))

	msg := tr.Translate(language.English, errmsg.Text("JWT expired"), errmsg.ContextAuth)
	assert.Equal(t, "Your session has expired. Please sign in again.", msg)
}

func TestFrom_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		key  errmsg.Key
		cat  errmsg.Category
	}{
		{"not found", fmt.Errorf("svc: %w", domain.ErrNotFound), errmsg.KeyNotFound, errmsg.CategoryDatabase},
		{"access denied", domain.ErrAccessDenied, errmsg.KeyAccessDenied, errmsg.CategoryDatabase},
		{"unauthenticated", domain.ErrUnauthenticated, errmsg.KeyAuthRequired, errmsg.CategoryAuth},
		{"validation", domain.NewValidationError("title", "is required"), errmsg.KeyInvalidInput, errmsg.CategoryValidation},
		{"timeout", context.DeadlineExceeded, errmsg.KeyTimeout, errmsg.CategoryNetwork},
		{"config", fmt.Errorf("%w: STORAGE_DIR", domain.ErrConfig), errmsg.KeyConfigMissing, errmsg.CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := errmsg.From(tt.err)
			assert.Equal(t, tt.key, errmsg.Resolve(raw, errmsg.ContextFetch))
			assert.Equal(t, tt.cat, errmsg.Classify(raw))
		})
	}
}

func TestFrom_Nil(t *testing.T) {
	assert.Nil(t, errmsg.From(nil))
}

func TestFromValue_Shapes(t *testing.T) {
	assert.Equal(t, errmsg.Text("boom"), errmsg.FromValue("boom"))
	assert.Equal(t, errmsg.BackendError{Code: "42501", Message: "permission denied"},
		errmsg.FromValue(map[string]any{"code": "42501", "message": "permission denied"}))
	assert.IsType(t, errmsg.Unknown{}, errmsg.FromValue(map[string]any{"x": 1}))
	assert.IsType(t, errmsg.Unknown{}, errmsg.FromValue(3.14))
	assert.IsType(t, errmsg.Unknown{}, errmsg.FromValue(nil))
}

func TestClassify_Keywords(t *testing.T) {
	assert.Equal(t, errmsg.CategoryNetwork, errmsg.Classify(errmsg.Text("Failed to fetch")))
	assert.Equal(t, errmsg.CategoryAuth, errmsg.Classify(errmsg.Text("Invalid login credentials")))
	assert.Equal(t, errmsg.CategoryValidation, errmsg.Classify(errmsg.Text("title is required")))
	assert.Equal(t, errmsg.CategoryDatabase, errmsg.Classify(errmsg.Text("relation \"x\" does not exist")))
	assert.Equal(t, errmsg.CategoryUnknown, errmsg.Classify(errmsg.Text("???")))
	assert.Equal(t, errmsg.CategoryValidation, errmsg.Classify(errmsg.BackendError{Code: "22P02"}))
}

func TestReporter_LogsRecord(t *testing.T) {
	var buf bytes.Buffer
	r := errmsg.NewReporter(slog.New(slog.NewJSONHandler(&buf, nil)), nil)

	r.ReportError(context.Background(), errors.New("Failed to fetch"), errmsg.ContextFetch, "TripDetail.Load")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetch", entry["context"])
	assert.Equal(t, "TripDetail.Load", entry["operation"])
	assert.Equal(t, ko(errmsg.KeyNetwork), entry["translated_message"])
	assert.Contains(t, entry["original_error"], "Failed to fetch")
	assert.NotEmpty(t, entry["timestamp"])
}

func TestReporter_NilSafe(t *testing.T) {
	var r *errmsg.Reporter
	assert.NotPanics(t, func() {
		r.Report(context.Background(), errmsg.Text("x"), errmsg.ContextFetch, "op")
	})
}
