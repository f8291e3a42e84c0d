// Package version holds the CLI version and compatibility checks.
package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Version is the CLI release version.
const Version = "0.3.0"

// CheckMinimum verifies the running CLI satisfies a caller-required
// minimum, e.g. from a project config pinning a schemakit version.
func CheckMinimum(required string) error {
	if required == "" {
		return nil
	}
	min, err := goversion.NewVersion(required)
	if err != nil {
		return fmt.Errorf("invalid required version %q: %w", required, err)
	}
	current, err := goversion.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	if current.LessThan(min) {
		return fmt.Errorf("schemakit %s is older than the required %s", Version, required)
	}
	return nil
}
