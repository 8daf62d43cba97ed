package mirror

import (
	"github.com/roach88/mirror/internal/layout"
	"github.com/roach88/mirror/internal/quicklook"
)

// QuickLook returns a preview of v. A Go value implementing
// quicklook.QuickLookable supplies its own; otherwise the legacy view's
// preview is used, falling back to text of the value's debug summary.
func (r *Reflector) QuickLook(v any) quicklook.Value {
	if q, ok := v.(quicklook.QuickLookable); ok {
		if ql := q.QuickLook(); ql != nil {
			return ql
		}
	}
	if ql := layout.Reflect(v).QuickLook(); ql != nil {
		return ql
	}
	return quicklook.Text(layout.DebugSummary(v))
}
