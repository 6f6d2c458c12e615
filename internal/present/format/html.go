package format

import (
	"html/template"
	"io"
	"strings"

	"github.com/mithrel/fitcoach/internal/guide"
	"github.com/mithrel/fitcoach/pkg/models"
)

var exerciseFragment = template.Must(template.New("exercise").Parse(`<div id="exercise-detail" data-exercise-id="{{.ID}}">
<h1>{{.Name}}</h1>
<p>{{.Description}}</p>
<p>Category: {{.Category}}</p>
<p>Tags: {{.Tags}}</p>
{{- if .Guide}}
<section class="beginner-guide">{{.Guide}}</section>
{{- end}}
</div>
`))

// WriteHTMLExercise writes the exercise detail fragment with its rendered guide.
func WriteHTMLExercise(w io.Writer, e models.Exercise, opts guide.Options) error {
	return exerciseFragment.Execute(w, struct {
		ID          int64
		Name        string
		Description string
		Category    models.Category
		Tags        string
		Guide       template.HTML
	}{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Tags:        strings.ReplaceAll(joinTags(e.Tags), ",", ", "),
		Guide:       template.HTML(guide.RenderWith(e.BeginnerGuide, opts)),
	})
}
