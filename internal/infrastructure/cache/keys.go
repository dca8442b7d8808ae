package cache

import "strings"

const (
	MarketDataPrefix = "market_data"
	AnalysisPrefix   = "analysis"
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes glob metacharacters so s matches only itself inside a pattern.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func joinKey(parts ...string) string {
	return strings.Join(parts, ":")
}
