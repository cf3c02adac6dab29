package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
)

// CheckConfigCompatibility checks whether a configuration file declaring
// version declared can be read by a build supporting version supported.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - The declared minor version must not be newer than the supported one
//   - Patch versions are ignored
//
// Examples:
//   - Supported 1.1.0, Config 1.0.0 -> OK (older minor)
//   - Supported 1.1.0, Config 1.1.7 -> OK (patch differs)
//   - Supported 1.1.0, Config 1.2.0 -> ERROR (config is newer)
//   - Supported 1.1.0, Config 2.0.0 -> ERROR (major differs)
func CheckConfigCompatibility(supported, declared string) error {
	supported = strings.TrimPrefix(strings.TrimSpace(supported), "v")
	declared = strings.TrimPrefix(strings.TrimSpace(declared), "v")

	if supported == "main" || declared == "main" {
		return nil
	}

	supportedSemver, err := semver.NewVersion(supported)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid supported version '%s'", supported)
	}

	declaredSemver, err := semver.NewVersion(declared)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", declared)
	}

	if supportedSemver.Major() != declaredSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"major version mismatch: tool reads %d.x.x but config declares %d.x.x",
			supportedSemver.Major(), declaredSemver.Major())
	}

	if declaredSemver.Minor() > supportedSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"config version %d.%d.x is newer than supported %d.%d.x",
			declaredSemver.Major(), declaredSemver.Minor(),
			supportedSemver.Major(), supportedSemver.Minor())
	}

	return nil
}
