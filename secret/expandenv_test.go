package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("CREDS_DIR", "/var/run/secrets")
	t.Setenv("SA", "ga4")

	tests := []struct {
		in      string
		want    string
		missing []string
	}{
		{in: "${CREDS_DIR}/${SA}.json", want: "/var/run/secrets/ga4.json"},
		{in: "$CREDS_DIR/sa.json", want: "/var/run/secrets/sa.json"},
		{in: "cost$$5", want: "cost$5"},
		{in: "no variables", want: "no variables"},
		{in: "${B_MISSING}/${A_MISSING}/${B_MISSING}", missing: []string{"A_MISSING, B_MISSING"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if tt.missing != nil {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("err = %v, want ErrNotFound", err)
				}
				for _, m := range tt.missing {
					if !strings.Contains(err.Error(), m) {
						t.Errorf("err = %v, want it to list %q", err, m)
					}
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
