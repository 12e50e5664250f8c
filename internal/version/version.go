// Package version provides the build version of the module.
package version

import "fmt"

// values are overridden by the linker at release build time
var (
	version = "0.1.0"
	commit  = "dev"
)

// Info describes the build.
type Info struct {
	Version string
	Commit  string
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit)
}

// Current returns the build info of the running binary.
func Current() Info {
	return Info{
		Version: version,
		Commit:  commit,
	}
}
