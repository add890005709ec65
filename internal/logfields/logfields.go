package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID        = "run_id"
	KeyStage        = "stage"
	KeyDurationMS   = "duration_ms"
	KeyBucket       = "bucket"
	KeyDistribution = "distribution_id"
	KeyKey          = "object_key"
	KeyPath         = "path"
	KeyPattern      = "pattern"
	KeyProject      = "project"
	KeySource       = "source"
	KeyURL          = "url"
	KeyMethod       = "method"
	KeyRemoteAddr   = "remote_addr"
	KeyStatus       = "status"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Bucket(b string) slog.Attr        { return slog.String(KeyBucket, b) }
func Distribution(id string) slog.Attr { return slog.String(KeyDistribution, id) }
func Key(k string) slog.Attr           { return slog.String(KeyKey, k) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Pattern(p string) slog.Attr       { return slog.String(KeyPattern, p) }
func Project(p string) slog.Attr       { return slog.String(KeyProject, p) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr    { return slog.String(KeyRemoteAddr, a) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
