package secret

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// ExpandEnvStrict expands $VAR and ${VAR} from the process environment.
// Unlike os.ExpandEnv it fails, naming every missing variable, instead of
// substituting "". "$$" yields a literal "$".
func ExpandEnvStrict(s string) (string, error) {
	var missing []string
	out := os.Expand(s, func(key string) string {
		if key == "$" {
			return "$"
		}
		v, ok := os.LookupEnv(key)
		if !ok && !slices.Contains(missing, key) {
			missing = append(missing, key)
		}
		return v
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: environment variables %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return out, nil
}
