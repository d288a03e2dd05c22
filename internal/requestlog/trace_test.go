package requestlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCloudTraceContext(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		traceID string
		spanID  string
		sampled bool
		ok      bool
	}{
		{
			name:   "empty header",
			header: "",
			ok:     false,
		},
		{
			name:    "full form sampled",
			header:  "105445aa7843bc8bf206b120001000/123456789;o=1",
			traceID: "105445aa7843bc8bf206b120001000",
			spanID:  "123456789",
			sampled: true,
			ok:      true,
		},
		{
			name:    "full form not sampled",
			header:  "abc/1;o=0",
			traceID: "abc",
			spanID:  "1",
			sampled: false,
			ok:      true,
		},
		{
			name:    "trace id only",
			header:  "abc123",
			traceID: "abc123",
			ok:      true,
		},
		{
			name:    "trace and span without options",
			header:  "abc/42",
			traceID: "abc",
			spanID:  "42",
			ok:      true,
		},
		{
			name:   "options without trace id",
			header: ";o=1",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traceID, spanID, sampled, ok := parseCloudTraceContext(tt.header)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.traceID, traceID)
			assert.Equal(t, tt.spanID, spanID)
			assert.Equal(t, tt.sampled, sampled)
		})
	}
}
