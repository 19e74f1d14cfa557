package domain

// Crate represents the package section of a Cargo.toml manifest.
type Crate struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Publish *bool  `toml:"publish"`
}

// Publishable reports whether the manifest allows publishing.
// Cargo treats a missing publish key as publishable.
func (c *Crate) Publishable() bool {
	return c.Publish == nil || *c.Publish
}
