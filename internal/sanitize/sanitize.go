package sanitize

import (
	"encoding/json"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/tech-arch1tect/loggate/internal/logging"

	"go.uber.org/zap"
)

const (
	// MaskComplete replaces a sensitive value entirely.
	MaskComplete = "...FULL_MASKED..."
	// maskInfix joins the retained prefix and suffix of a partially masked value.
	maskInfix = "...MASKED..."
	// ShortenedSuffix marks a string truncated to MaxStrLen.
	ShortenedSuffix = "..SHORTENED"
	// DepthExceeded replaces any value nested deeper than MaxDepth.
	DepthExceeded = "..DEPTH EXCEEDED"
	// MultipartPlaceholder stands in for file-upload bodies, which are never logged.
	MultipartPlaceholder = "The image was uploaded to the server"

	// metaKey is dropped from logged mappings entirely, an upstream
	// pagination/metadata convention.
	metaKey = "meta"

	// partialSliceMax caps the retained prefix/suffix of a partial mask.
	partialSliceMax = 4
)

// Options is the read-only sanitization configuration, fixed at startup.
type Options struct {
	SensitiveKeys   []string
	ExcludedHeaders []string
	MaskStyle       string
	MaxStrLen       int
	MaxListLen      int
	MaxDepth        int
}

// Sanitizer masks sensitive keys, excludes headers, and bounds payload size
// for logging. All operations produce new values; callers' data is never
// mutated. Safe for concurrent use after construction.
type Sanitizer struct {
	patterns        []*regexp.Regexp
	excludedHeaders map[string]struct{}
	maskFn          func(any) string
	maxStrLen       int
	maxListLen      int
	maxDepth        int
}

// New compiles the configured sensitive-key patterns and resolves the mask
// style. Empty key/header lists fall back to the built-in defaults. An
// unrecognized mask style degrades to "partial" with a warning rather than
// failing startup; an invalid pattern is a hard configuration error.
func New(opts Options, logger *logging.Logger) (*Sanitizer, error) {
	keys := opts.SensitiveKeys
	if keys == nil {
		keys = DefaultSensitiveKeys
	}
	headers := opts.ExcludedHeaders
	if headers == nil {
		headers = DefaultExcludedHeaders
	}

	patterns := make([]*regexp.Regexp, 0, len(keys))
	for _, key := range keys {
		re, err := regexp.Compile("(?i)" + key)
		if err != nil {
			return nil, fmt.Errorf("invalid sensitive key pattern %q: %w", key, err)
		}
		patterns = append(patterns, re)
	}

	excluded := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		excluded[strings.ToLower(h)] = struct{}{}
	}

	s := &Sanitizer{
		patterns:        patterns,
		excludedHeaders: excluded,
		maxStrLen:       opts.MaxStrLen,
		maxListLen:      opts.MaxListLen,
		maxDepth:        opts.MaxDepth,
	}

	switch opts.MaskStyle {
	case "complete":
		s.maskFn = completeMask
	case "partial":
		s.maskFn = s.partialMask
	default:
		if logger != nil {
			logger.Warn("Invalid mask style, using default style 'partial'",
				zap.String("mask_style", opts.MaskStyle))
		}
		s.maskFn = s.partialMask
	}

	return s, nil
}

func completeMask(any) string {
	return MaskComplete
}

// partialMask keeps min(4, len/4) characters on each end. Values of four
// characters or fewer are fully masked so short secrets never leak.
func (s *Sanitizer) partialMask(v any) string {
	value := []rune(stringify(v))
	length := len(value)
	if length <= partialSliceMax {
		return MaskComplete
	}
	slice := length / 4
	if slice > partialSliceMax {
		slice = partialSliceMax
	}
	return string(value[:slice]) + maskInfix + string(value[length-slice:])
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Mask replaces the value of every top-level key matching a sensitive
// pattern. Non-mapping input passes through unchanged; masking does not
// recurse, it applies at whatever level body decoding produced a mapping.
func (s *Sanitizer) Mask(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, value := range m {
		if s.matchesSensitiveKey(k) {
			out[k] = s.maskFn(value)
		} else {
			out[k] = value
		}
	}
	return out
}

func (s *Sanitizer) matchesSensitiveKey(key string) bool {
	for _, re := range s.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// ExcludeKeys returns a copy of a flat header-like mapping without the
// excluded header names (case-insensitive). Nil in, nil out.
func (s *Sanitizer) ExcludeKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, drop := s.excludedHeaders[strings.ToLower(k)]; drop {
			continue
		}
		out[k] = v
	}
	return out
}

// Abridge bounds a decoded payload for logging: long strings are truncated,
// long lists cut to their leading elements, and anything nested deeper than
// MaxDepth key levels collapses to a placeholder. Work is bounded by the
// configured thresholds regardless of input shape.
func (s *Sanitizer) Abridge(v any) any {
	return s.abridge(v, 0)
}

func (s *Sanitizer) abridge(v any, depth int) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, value := range t {
			if k == metaKey {
				continue
			}
			out[k] = s.abridgeChild(value, depth+1)
		}
		return out
	case string:
		if s.maxStrLen > 0 {
			if r := []rune(t); len(r) > s.maxStrLen {
				return string(r[:s.maxStrLen]) + ShortenedSuffix
			}
		}
		return t
	case []any:
		n := len(t)
		if s.maxListLen > 0 && n > s.maxListLen {
			n = s.maxListLen
		}
		out := make([]any, 0, n)
		for _, item := range t[:n] {
			out = append(out, s.abridgeChild(item, depth+1))
		}
		return out
	default:
		return v
	}
}

// abridgeChild collapses a child value on the step that would exceed the
// depth bound, so levels up to maxDepth are traversed and the next one is
// replaced wholesale.
func (s *Sanitizer) abridgeChild(v any, depth int) any {
	if depth >= s.maxDepth {
		return DepthExceeded
	}
	return s.abridge(v, depth)
}

// DecodeBody turns raw request or response bytes into a loggable value based
// on content type. JSON is parsed (falling back to the raw text on parse
// failure), abridged, then mask-scanned; plain text is abridged and
// mask-scanned (a no-op for non-mappings); multipart bodies are replaced by a
// placeholder; any other content type is itself mask-scanned, since some
// schemes embed tokens there. Never panics past this boundary: on any
// failure it degrades to a best-effort string.
func (s *Sanitizer) DecodeBody(contentType string, raw []byte) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("unloggable body: %v", r)
		}
	}()

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch mediaType {
	case "multipart/form-data":
		return MultipartPlaceholder
	case "application/json":
		if len(raw) == 0 {
			return nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return s.Mask(s.Abridge(string(raw)))
		}
		return s.Mask(s.Abridge(v))
	case "text/plain":
		if len(raw) == 0 {
			return nil
		}
		return s.Mask(s.Abridge(string(raw)))
	default:
		return s.Mask(contentType)
	}
}
