package present

import (
	"io"

	"github.com/mithrel/fitcoach/internal/present/format"
	"github.com/mithrel/fitcoach/pkg/models"
)

// RenderStats renders the staff dashboard summary.
func RenderStats(w io.Writer, st models.Stats, opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, st, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyStats(w, st, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainStats(w, st, opts.Headers)
	}
}

func RenderUsers(w io.Writer, p models.Page[models.User], opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyUsers(w, p, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainUsers(w, p, opts.Headers)
	}
}

func RenderUserDetail(w io.Writer, d models.UserDetail, opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, d, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyUserDetail(w, d, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainUserDetail(w, d, opts.Headers)
	}
}

func RenderTags(w io.Writer, p models.Page[models.TagRecord], opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyTags(w, p, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainTags(w, p, opts.Headers)
	}
}
