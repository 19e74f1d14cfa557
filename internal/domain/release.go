package domain

// Release holds all metadata related to a release run.
type Release struct {
	CrateName  string
	Version    *Version
	TagName    string
	ReleaseURL string
}
