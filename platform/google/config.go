package google

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// Config configures the Google API clients.
type Config struct {
	// CredentialsFile is a path to a service account or authorized user
	// JSON file. Empty uses Application Default Credentials.
	CredentialsFile string

	// CredentialsJSON holds credentials inline. It takes precedence over
	// CredentialsFile.
	CredentialsJSON []byte

	// MerchantIDs lists the Merchant Center accounts to enumerate. Empty
	// asks the Content API which accounts the caller can access.
	MerchantIDs []uint64

	// SkipStreams disables listing GA4 data streams. Streams carry the
	// website URLs that make properties resolvable by domain.
	SkipStreams bool

	// PageSize bounds list calls that support paging.
	// Default: 200
	PageSize int64

	// ClientOptions are appended to every client's options.
	ClientOptions []option.ClientOption
}

func (c Config) pageSize() int64 {
	if c.PageSize <= 0 {
		return 200
	}
	return c.PageSize
}

func (c Config) clientOptions(scope string) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(scope)}
	switch {
	case len(c.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(c.CredentialsJSON))
	case c.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	return append(opts, c.ClientOptions...)
}

// NewListers creates one lister per requested platform. With no platforms
// it creates all three.
func NewListers(ctx context.Context, cfg Config, platforms ...platform.Platform) ([]platform.Lister, error) {
	if len(platforms) == 0 {
		platforms = platform.Platforms()
	}

	listers := make([]platform.Lister, 0, len(platforms))
	for _, p := range platforms {
		var (
			l   platform.Lister
			err error
		)
		switch p {
		case platform.WebAnalytics:
			l, err = NewAnalyticsLister(ctx, cfg)
		case platform.SearchConsole:
			l, err = NewSearchConsoleLister(ctx, cfg)
		case platform.MerchantCenter:
			l, err = NewMerchantLister(ctx, cfg)
		default:
			err = fmt.Errorf("%w: %q", platform.ErrUnknownPlatform, p)
		}
		if err != nil {
			return nil, err
		}
		listers = append(listers, l)
	}
	return listers, nil
}
