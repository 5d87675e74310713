package logger

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders flat records in a stable key order, either as a
// JSON object or as key=value pairs.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		collect(fields, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(fields, prefix, a)
		return true
	})
	addContextFields(ctx, fields)

	if rid, _ := fields["rid"].(string); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if _, seen := fields["rid_full"]; isJSON && !seen {
				fields["rid_full"] = rid
			}
			fields["rid"] = compact
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		fields["event"] = cmp.Or(r.Message, "unknown")
	}
	if comp, _ := fields["component"].(string); comp == "" {
		fields["component"] = "app"
	}
	if s, ok := fields["status"].(string); ok {
		s = strings.ToLower(s)
		if _, known := allowedStatus[s]; known {
			fields["status"] = s
		}
	}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}

	var line []byte
	if isJSON {
		var err error
		if line, err = formatJSONLine(fields, h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = formatKVLine(fields, h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clone(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clone(h.groups), name)
	return &clone
}

// collect flattens groups into dotted keys.
func collect(fields map[string]any, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			collect(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := normalizeAttr(key, v); ok {
		fields[k] = val
	}
}

func normalizeAttr(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// durationKey gives every duration an explicit millisecond suffix.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setIfAbsent := func(k string, v any, present bool) {
		if _, ok := fields[k]; present && !ok {
			fields[k] = v
		}
	}
	rid := RIDFrom(ctx)
	setIfAbsent("rid", rid, rid != "")
	m := metaFrom(ctx)
	setIfAbsent("update_id", int64(m.updateID), m.updateID != 0)
	setIfAbsent("user_id", m.userID, m.userID != 0)
	setIfAbsent("chat_id", m.chatID, m.chatID != 0)
	hid := HandlerFrom(ctx)
	setIfAbsent("handler", hid, hid != "")
}

// orderedKeys lists the keys of order first, then the rest alphabetically.
func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, k := range order {
		if _, ok := fields[k]; ok {
			if _, dup := seen[k]; !dup {
				keys = append(keys, k)
				seen[k] = struct{}{}
			}
		}
	}
	var rest []string
	for k := range fields {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

func formatJSONLine(fields map[string]any, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range orderedKeys(fields, order) {
		data, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func formatKVLine(fields map[string]any, order []string) []byte {
	var b strings.Builder
	for i, k := range orderedKeys(fields, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(fields[k])
		if strings.ContainsFunc(s, needsQuote) {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
