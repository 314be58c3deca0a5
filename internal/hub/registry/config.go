package registry

// Config is the immutable registry configuration injected into every client
// at construction.
type Config struct {
	// APIBaseURL is the member API base, including the version prefix,
	// e.g. "https://api.registry.example/v2.0".
	APIBaseURL string
	// SiteURL is the registry's public site, used to build source client
	// URIs and contributor profile URIs.
	SiteURL string
	// TokenURL is the OAuth token endpoint.
	TokenURL string
}
