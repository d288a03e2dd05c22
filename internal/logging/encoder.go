package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Field names understood by the Cloud Logging structured-log parser.
// https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
const (
	SourceLocationField = "logging.googleapis.com/sourceLocation"
	OperationField      = "logging.googleapis.com/operation"
	LabelsField         = "logging.googleapis.com/labels"
	TraceField          = "logging.googleapis.com/trace"
	SpanIDField         = "logging.googleapis.com/spanId"
	TraceSampledField   = "logging.googleapis.com/trace_sampled"
)

// NewGoogleEncoder returns a JSON encoder producing records Cloud Logging
// ingests natively: severity instead of level, message, RFC3339 time, and
// caller information under the sourceLocation field as an object.
func NewGoogleEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "severity",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey, // emitted as a sourceLocation object instead
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeSeverity,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return googleEncoder{zapcore.NewJSONEncoder(cfg)}
}

// encodeSeverity maps zap levels onto Cloud Logging severities.
func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	default:
		enc.AppendString("CRITICAL")
	}
}

type googleEncoder struct {
	zapcore.Encoder
}

func (g googleEncoder) Clone() zapcore.Encoder {
	return googleEncoder{g.Encoder.Clone()}
}

func (g googleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if entry.Caller.Defined {
		fields = append(fields, zap.Object(SourceLocationField, sourceLocation{entry.Caller}))
	}
	return g.Encoder.EncodeEntry(entry, fields)
}

type sourceLocation struct {
	caller zapcore.EntryCaller
}

func (s sourceLocation) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("file", s.caller.File)
	enc.AddInt("line", s.caller.Line)
	enc.AddString("function", s.caller.Function)
	return nil
}
