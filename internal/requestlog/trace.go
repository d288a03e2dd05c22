package requestlog

import "strings"

// cloudTraceHeader carries trace metadata in the form
// "TRACE_ID/SPAN_ID;o=OPTIONS" on requests entering through Google load
// balancers.
const cloudTraceHeader = "X-Cloud-Trace-Context"

func parseCloudTraceContext(header string) (traceID, spanID string, sampled bool, ok bool) {
	if header == "" {
		return "", "", false, false
	}

	rest := header
	if idx := strings.Index(rest, ";"); idx >= 0 {
		sampled = strings.Contains(rest[idx+1:], "o=1")
		rest = rest[:idx]
	}

	traceID = rest
	if idx := strings.Index(rest, "/"); idx >= 0 {
		traceID = rest[:idx]
		spanID = rest[idx+1:]
	}

	if traceID == "" {
		return "", "", false, false
	}
	return traceID, spanID, sampled, true
}
