package logging

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/loggate/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OperationFields builds the Cloud Logging labels/operation/trace fields for
// one log event from the request storage in ctx. first and last mark the
// event's position within the logical operation. Works with or without an
// installed storage; identity and id fields degrade to null strings.
func OperationFields(ctx context.Context, projectID string, first, last bool) []zap.Field {
	st := storage.FromContext(ctx)

	fields := []zap.Field{
		zap.Object(LabelsField, labels{st}),
		zap.Object(OperationField, operation{st: st, first: first, last: last}),
	}

	if st != nil && st.TraceID != "" && projectID != "" {
		fields = append(fields,
			zap.String(TraceField, fmt.Sprintf("projects/%s/traces/%s", projectID, st.TraceID)),
			zap.String(SpanIDField, st.SpanID),
			zap.Bool(TraceSampledField, st.TraceSampled),
		)
	}

	return fields
}

type labels struct {
	st *storage.RequestStorage
}

func (l labels) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("request_user_id", stringifyLabel(l.st.UserIDValue()))
	enc.AddString("request_user_display", stringifyLabel(l.st.UserDisplayValue()))
	return nil
}

// Label values must be strings; absent identities become "null" rather than
// being dropped, so the fields stay queryable.
func stringifyLabel(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

type operation struct {
	st          *storage.RequestStorage
	first, last bool
}

func (o operation) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	id := ""
	if o.st != nil {
		id = o.st.UUID
	}
	enc.AddString("id", id)
	enc.AddBool("first", o.first)
	enc.AddBool("last", o.last)
	return nil
}
