package client

// URLBuilder constructs the links reported next to a package.
type URLBuilder interface {
	Registry(name, version string) string
	Download(name, version string) string
	PURL(name, version string) string
}

// BaseURLs is a URLBuilder assembled from optional functions.
type BaseURLs struct {
	RegistryFn func(name, version string) string
	DownloadFn func(name, version string) string
	PURLFn     func(name, version string) string
}

func (b *BaseURLs) Registry(name, version string) string {
	if b.RegistryFn != nil {
		return b.RegistryFn(name, version)
	}
	return ""
}

func (b *BaseURLs) Download(name, version string) string {
	if b.DownloadFn != nil {
		return b.DownloadFn(name, version)
	}
	return ""
}

func (b *BaseURLs) PURL(name, version string) string {
	if b.PURLFn != nil {
		return b.PURLFn(name, version)
	}
	if version != "" {
		return "pkg:generic/" + name + "@" + version
	}
	return "pkg:generic/" + name
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download" and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Download(name, version); v != "" {
		result["download"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
