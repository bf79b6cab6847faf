package errmsg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Reporter writes translated errors to the log. Reporting is a side channel:
// it never returns an error and never panics into the caller.
type Reporter struct {
	logger     *slog.Logger
	translator *Translator
	now        func() time.Time
}

// NewReporter returns a Reporter that logs through logger.
func NewReporter(logger *slog.Logger, translator *Translator) *Reporter {
	if translator == nil {
		translator = defaultTranslator
	}
	return &Reporter{logger: logger, translator: translator, now: time.Now}
}

// Report logs one structured record for raw. operation names the caller-level
// action (for example "TripDetail.Load").
func (r *Reporter) Report(ctx context.Context, raw Raw, errCtx Context, operation string) {
	if r == nil || r.logger == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			fmt.Fprintf(os.Stderr, "errmsg: reporter panic: %v\n", p)
		}
	}()

	r.logger.ErrorContext(ctx, "operation failed",
		"original_error", describe(raw),
		"translated_message", r.translator.Translate(r.translator.Default(), raw, errCtx),
		"category", string(Classify(raw)),
		"timestamp", r.now().UTC().Format(time.RFC3339Nano),
		"context", string(errCtx),
		"operation", operation,
	)
}

// ReportError is Report(ctx, From(err), errCtx, operation). A nil err is ignored.
func (r *Reporter) ReportError(ctx context.Context, err error, errCtx Context, operation string) {
	if err == nil {
		return
	}
	r.Report(ctx, From(err), errCtx, operation)
}

func describe(raw Raw) string {
	switch v := raw.(type) {
	case nil:
		return "<nil>"
	case BackendError:
		return fmt.Sprintf("backend %s: %s", v.Code, v.Message)
	case AuthError:
		return fmt.Sprintf("auth %d: %s", v.Status, v.Message)
	case NetworkError:
		return fmt.Sprintf("network %s: %s", v.Op, v.Message)
	case Invalid:
		return fmt.Sprintf("invalid: %v", v.Fields)
	case Unknown:
		return fmt.Sprintf("unknown: %v", v.Value)
	}
	return Message(raw)
}
