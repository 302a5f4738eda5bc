package observe_test

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/analyticsresolve/observe"
)

func ExampleToolMeta() {
	meta := observe.ToolMeta{Namespace: "accounts", Name: "resolve_account"}
	fmt.Println(meta.ToolID())
	fmt.Println(meta.SpanName())
	// Output:
	// accounts.resolve_account
	// tool.exec.accounts.resolve_account
}

func ExampleMiddleware_Wrap() {
	mw := observe.NewMiddleware(observe.NopTracer(), observe.NopMetrics(), observe.NopLogger())
	exec := mw.Wrap(func(ctx context.Context, tool observe.ToolMeta, input any) (any, error) {
		return fmt.Sprintf("%s(%v)", tool.Name, input), nil
	})

	out, err := exec(context.Background(), observe.ToolMeta{Namespace: "accounts", Name: "find_ga4_property"}, "gatedepot")
	fmt.Println(out, err)
	// Output: find_ga4_property(gatedepot) <nil>
}

func ExampleNewObserver() {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "analyticsresolve",
		Logging:     observe.LoggingConfig{Enabled: true, Level: "error"},
		Output:      os.Stdout,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer obs.Shutdown(ctx)

	obs.Logger().Info(ctx, "below the configured level")
	fmt.Println("ready")
	// Output: ready
}
