package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/analyticsresolve/accounts"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/resilience"
)

// ToolError is the client-facing form of a failed tool call.
type ToolError struct {
	Tool     string
	Platform string
	Op       string
	Attempts int
	Class    string
	Status   int
	Message  string

	err error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Tool, e.Message)

	var attrs []string
	if e.Platform != "" {
		attrs = append(attrs, "platform="+e.Platform)
	}
	if e.Op != "" {
		attrs = append(attrs, "op="+e.Op)
	}
	if e.Attempts > 0 {
		attrs = append(attrs, fmt.Sprintf("attempts=%d", e.Attempts))
	}
	if e.Class != "" {
		attrs = append(attrs, "class="+e.Class)
	}
	if e.Status != 0 {
		attrs = append(attrs, fmt.Sprintf("status=%d", e.Status))
	}
	if len(attrs) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(attrs, " "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.err }

// toolError flattens err into a ToolError. Only the summaries held by
// UpstreamError and resilience.Error reach the message.
func toolError(tool string, err error) *ToolError {
	te := &ToolError{Tool: tool, Message: err.Error(), err: err}

	var de *accounts.DiscoveryError
	if errors.As(err, &de) {
		te.Platform = string(de.Platform)
	}

	var re *resilience.Error
	if errors.As(err, &re) {
		te.Op = re.Op
		te.Attempts = re.Attempts
		te.Class = re.Class.String()
		if re.Reason != nil {
			te.Message = re.Reason.Error()
		}
	}

	var ue *platform.UpstreamError
	if errors.As(err, &ue) {
		if te.Platform == "" {
			te.Platform = string(ue.Platform)
		}
		if te.Op == "" {
			te.Op = ue.Op
		}
		te.Status = ue.StatusCode
		if te.Class == "" {
			te.Class = platform.Classify(ue).String()
		}
		te.Message += ": " + ue.Error()
	}
	return te
}
