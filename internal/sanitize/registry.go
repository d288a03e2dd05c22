package sanitize

// DefaultSensitiveKeys are regular expressions matched case-insensitively
// against field and header names. A value whose key matches any of them is
// masked before the payload is logged.
var DefaultSensitiveKeys = []string{
	"^password$",
	".*secret.*",
	".*token.*",
	".*key.*",
	".*pass.*",
	".*auth.*",
	"^Bearer.*",
	".*ssn.*",         // social security numbers and equivalents
	".*credit.*card.*",
	".*cvv.*",
	".*dob.*",         // date of birth
	".*pin.*",
	".*salt.*",
	".*encrypt.*",
	".*api.*",         // API keys
	".*jwt.*",
	".*session.*id.*",
	"^Authorization$",
	".*user.*name.*",
	".*address.*",
	".*phone.*",
	"^otp.*",
}

// DefaultExcludedHeaders are dropped from logged header mappings outright,
// matched by exact case-insensitive name.
var DefaultExcludedHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-API-Key",
	"X-CSRFToken",
	"Proxy-Authorization",
	"If-None-Match", // cache fingerprinting
	"Server",
	"WWW-Authenticate",
	"X-Correlation-ID",
	"X-Frame-Options",
	"Strict-Transport-Security",
	"X-XSS-Protection",
	"X-Content-Type-Options",
	"X-Download-Options",
	"X-Permitted-Cross-Domain-Policies",
}
