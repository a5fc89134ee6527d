package bancho

// Fingerprint is the opaque client-identity string sent with the login
// payload. Its historical format is
// "{exe_hash}:{adapter_string}:{adapter_hash}:{uninstall_id}:{disk_signature}:"
// (§6) — this package never derives one by enumerating host hardware (an
// explicit Non-goal, §1); callers supply whatever string their environment
// considers a valid fingerprint.
type Fingerprint string

// String returns the fingerprint as sent on the wire.
func (f Fingerprint) String() string { return string(f) }
