package present

import (
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mithrel/fitcoach/internal/guide"
	"github.com/mithrel/fitcoach/internal/present/format"
	"github.com/mithrel/fitcoach/pkg/models"
)

type Mode int

const (
	ModeAuto Mode = iota
	ModePlain
	ModePretty
	ModeJSON
	ModeHTML
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	// Style is the glamour style for pretty output; empty uses format.DefaultStyle.
	Style string
	Guide guide.Options
}

// ParseMode parses "auto", "plain", "pretty", "json" or "html".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return ModeAuto, true
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "html":
		return ModeHTML, true
	default:
		return ModeAuto, false
	}
}

// Resolve replaces ModeAuto with pretty on a terminal and plain otherwise.
func (o Options) Resolve(w io.Writer) Options {
	if o.Mode != ModeAuto {
		return o
	}
	o.Mode = ModePlain
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		o.Mode = ModePretty
	}
	return o
}

var errHTMLUnsupported = errors.New("html output is only supported for exercises and guides")

// RenderExercise renders a single exercise with its beginner guide.
func RenderExercise(w io.Writer, e models.Exercise, opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, e, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyExercise(w, e, opts.Style)
	case ModeHTML:
		return format.WriteHTMLExercise(w, e, opts.Guide)
	default:
		return format.WritePlainExercise(w, e)
	}
}

func RenderExercisePage(w io.Writer, p models.Page[models.Exercise], opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyExercisePage(w, p, opts.Style)
	case ModeHTML:
		for _, e := range p.Results {
			if err := format.WriteHTMLExercise(w, e, opts.Guide); err != nil {
				return err
			}
		}
		return nil
	default:
		return format.WritePlainExercisePage(w, p, opts.Headers)
	}
}

func RenderHistory(w io.Writer, p models.Page[models.ConditionLog], opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyHistory(w, p, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainHistory(w, p, opts.Headers)
	}
}

func RenderRoutines(w io.Writer, p models.Page[models.Routine], opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, p, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyRoutines(w, p, opts.Style)
	case ModeHTML:
		return errHTMLUnsupported
	default:
		return format.WritePlainRoutines(w, p, opts.Headers)
	}
}

// RenderRecommendation mirrors the API shape in JSON mode: the rest object
// or a bare array of exercises.
func RenderRecommendation(w io.Writer, rec models.Recommendation, opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeJSON:
		if rec.RestSuggestion {
			return format.WriteJSON(w, rec, opts.JSONIndent)
		}
		exs := rec.Exercises
		if exs == nil {
			exs = []models.Exercise{}
		}
		return format.WriteJSON(w, exs, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyRecommendation(w, rec, opts.Style)
	case ModeHTML:
		for _, e := range rec.Exercises {
			if err := format.WriteHTMLExercise(w, e, opts.Guide); err != nil {
				return err
			}
		}
		return nil
	default:
		return format.WritePlainRecommendation(w, rec, opts.Headers)
	}
}

// RenderGuide renders raw beginner-guide text. Plain mode echoes the source.
func RenderGuide(w io.Writer, text string, opts Options) error {
	opts = opts.Resolve(w)
	switch opts.Mode {
	case ModeHTML:
		_, err := io.WriteString(w, guide.RenderWith(text, opts.Guide)+"\n")
		return err
	case ModeJSON:
		return format.WriteJSON(w, struct {
			HTML string `json:"html"`
		}{guide.RenderWith(text, opts.Guide)}, opts.JSONIndent)
	case ModePretty:
		return format.WritePrettyGuide(w, text, opts.Style)
	default:
		if text == "" {
			return nil
		}
		_, err := io.WriteString(w, strings.TrimRight(text, "\n")+"\n")
		return err
	}
}
