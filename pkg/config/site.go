package config

// Site configuration keys.
const (
	SiteName   = "name"
	SiteSlogan = "slogan"
)

// SiteConfig reads site-wide settings by key.
type SiteConfig interface {
	Get(key string) (string, bool)
}

// StaticSite is a SiteConfig backed by a map.
type StaticSite map[string]string

// Get implements SiteConfig.
func (s StaticSite) Get(key string) (string, bool) {
	value, ok := s[key]
	return value, ok
}
