package config

import "strings"

// SiteConfig holds per-site overrides for a single domain.
type SiteConfig struct {
	// Cookie is sent as the Cookie header, e.g. "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxAssets overrides the asset cap. Zero keeps the global value.
	MaxAssets int `yaml:"maxAssets,omitempty"`

	// MaxTotalSize overrides the byte budget. Zero keeps the global value.
	MaxTotalSize int64 `yaml:"maxTotalSize,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .siteclone configuration file.
type File struct {
	// Sites maps domains (e.g. "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for domain, merging the
// site-specific entry over the defaults. Domain matching ignores case and
// a leading "www.".
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := SiteConfig{}.merge(cf.Defaults)

	key := siteKey(domain)
	for name, site := range cf.Sites {
		if siteKey(name) == key {
			result = result.merge(site)
			break
		}
	}
	return result
}

// merge returns s with every non-zero field of o applied. Headers are
// merged key by key and the receiver's map is never modified.
func (s SiteConfig) merge(o SiteConfig) SiteConfig {
	if o.Cookie != "" {
		s.Cookie = o.Cookie
	}
	if o.MaxAssets != 0 {
		s.MaxAssets = o.MaxAssets
	}
	if o.MaxTotalSize != 0 {
		s.MaxTotalSize = o.MaxTotalSize
	}
	if o.UserAgent != "" {
		s.UserAgent = o.UserAgent
	}
	if len(o.Headers) > 0 {
		headers := make(map[string]string, len(s.Headers)+len(o.Headers))
		for k, v := range s.Headers {
			headers[k] = v
		}
		for k, v := range o.Headers {
			headers[k] = v
		}
		s.Headers = headers
	}
	return s
}

func siteKey(domain string) string {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	return strings.TrimPrefix(d, "www.")
}
