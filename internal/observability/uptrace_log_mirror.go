package observability

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const (
	logMirrorScope    = "league-night/internal/platform/logging"
	requestLogMessage = "http request"
	healthPath        = "/healthz"
	realtimeSuffix    = "/realtime"
	maxNestedDepth    = 3
)

// logMirror forwards application log records to the global OpenTelemetry
// logger provider, which uptrace-go points at the collector.
type logMirror struct {
	logger otellog.Logger
}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	m := logMirror{
		logger: otelglobal.Logger(logMirrorScope, otellog.WithInstrumentationVersion(serviceVersion)),
	}
	return m.emit
}

func (m logMirror) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if shouldSkipUptraceLog(msg, args) {
		return
	}
	severity := severityOf(level)
	if !m.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	var rec otellog.Record
	now := time.Now()
	rec.SetTimestamp(now)
	rec.SetObservedTimestamp(now)
	rec.SetSeverity(severity)
	rec.SetSeverityText(level.CapitalString())
	rec.SetEventName(msg)
	rec.SetBody(otellog.StringValue(msg))
	rec.AddAttributes(buildOTelLogAttributes(args)...)
	m.logger.Emit(ctx, rec)
}

// shouldSkipUptraceLog drops access records for health checks and realtime
// upgrades.
func shouldSkipUptraceLog(msg string, args []any) bool {
	if msg != requestLogMessage {
		return false
	}
	path, ok := lookupString(args, "path")
	if !ok {
		return false
	}
	return path == healthPath || strings.HasSuffix(path, realtimeSuffix)
}

func lookupString(args []any, key string) (string, bool) {
	for i := 0; i+1 < len(args); i += 2 {
		if k, _ := args[i].(string); k == key {
			s, ok := args[i+1].(string)
			return s, ok
		}
	}
	return "", false
}

// buildOTelLogAttributes turns zap-style key/value pairs into attributes. A
// trailing key without a value becomes an empty attribute.
func buildOTelLogAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: toOTelLogValue(args[i+1], 0)})
	}
	return attrs
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.InfoLevel:
		return otellog.SeverityInfo
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	}
	if level < zapcore.DebugLevel {
		return otellog.SeverityTrace
	}
	return otellog.SeverityFatal
}

func toOTelLogValue(value any, depth int) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case uint32:
		return otellog.Int64Value(int64(v))
	case float64:
		return otellog.Float64Value(v)
	case []byte:
		return otellog.BytesValue(slices.Clone(v))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.Int64Value(v.Milliseconds())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	case []string:
		items := make([]otellog.Value, len(v))
		for i, s := range v {
			items[i] = otellog.StringValue(s)
		}
		return otellog.SliceValue(items...)
	case map[string]any:
		if depth >= maxNestedDepth {
			break
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		kvs := make([]otellog.KeyValue, len(keys))
		for i, k := range keys {
			kvs[i] = otellog.KeyValue{Key: k, Value: toOTelLogValue(v[k], depth+1)}
		}
		return otellog.MapValue(kvs...)
	}
	return otellog.StringValue(fmt.Sprint(value))
}
