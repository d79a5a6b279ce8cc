package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on outbound requests to the identity endpoint.
const AccessTokenHeaderName = "Authorization"

// Storage keys for the client-side secrets store.
const (
	// SessionBlobKey holds the encrypted serialized session payload.
	SessionBlobKey = "session_blob"
	// SessionMarkerKey is a cheap presence marker used for non-critical
	// UI gating only; it is not a security boundary.
	SessionMarkerKey = "session_marker"
)
