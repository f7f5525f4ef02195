package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/dsfleet/dsfleet/pkg/errors"
)

// Generate renders a user config file seeded from the given configuration
// with every value commented out, so dropping it into place changes
// nothing until the operator uncomments a line.
func Generate(cfg *Config) (string, error) {
	body, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "rendering config failed")
	}

	header := "# dsfleet configuration. Uncomment values to override the defaults.\n" +
		"# Environment variables win over this file: DSFLEET_OCI__PROFILE,\n" +
		"# DSFLEET_SELECTION__MAX_SNAPSHOT_AGE, and so on.\n\n"
	return header + commentOutValues(string(body)), nil
}

// commentOutValues comments every assignment line, keeping blanks,
// comments and section headers intact.
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
