package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/mithrel/fitcoach/pkg/models"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joined(u models.User) string {
	if u.DateJoined.IsZero() {
		return ""
	}
	return u.DateJoined.Local().Format("2006-01-02")
}

func writePlainLogs(w io.Writer, logs []models.ConditionLog, headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "user\tdate\tfatigue\tmood\tconcern\n")
	}
	for _, l := range logs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", l.User, l.LogDate, l.FatigueLevel, l.MoodLevel, esc(l.BodyConcern))
	}
	return tw.Flush()
}

// WritePlainStats writes the totals as key/value lines, then the latest logs.
func WritePlainStats(w io.Writer, st models.Stats, headers bool) error {
	tw := newTab(w)
	fmt.Fprintf(tw, "users\t%d\n", st.TotalUsers)
	fmt.Fprintf(tw, "new users (30d)\t%d\n", st.NewUsers30d)
	fmt.Fprintf(tw, "condition logs\t%d\n", st.TotalLogs)
	fmt.Fprintf(tw, "exercises\t%d\n", st.TotalExercises)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(st.RecentLogs) == 0 {
		return nil
	}
	_, _ = io.WriteString(w, "\n")
	return writePlainLogs(w, st.RecentLogs, headers)
}

func WritePlainUsers(w io.Writer, p models.Page[models.User], headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "id\tusername\tstaff\tactive\tjoined\n")
	}
	for _, u := range p.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, esc(u.Username), yesNo(u.IsStaff), yesNo(u.IsActive), joined(u))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, pageFooter(p.Count, p.CurrentPage, p.TotalPages)+"\n")
	return err
}

func WritePlainUserDetail(w io.Writer, d models.UserDetail, headers bool) error {
	tw := newTab(w)
	fmt.Fprintf(tw, "id\t%d\n", d.User.ID)
	fmt.Fprintf(tw, "username\t%s\n", esc(d.User.Username))
	fmt.Fprintf(tw, "staff\t%s\n", yesNo(d.User.IsStaff))
	fmt.Fprintf(tw, "active\t%s\n", yesNo(d.User.IsActive))
	fmt.Fprintf(tw, "joined\t%s\n", joined(d.User))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(d.RecentLogs) == 0 {
		return nil
	}
	_, _ = io.WriteString(w, "\n")
	return writePlainLogs(w, d.RecentLogs, headers)
}

func WritePlainTags(w io.Writer, p models.Page[models.TagRecord], headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "id\tname\n")
	}
	for _, t := range p.Results {
		fmt.Fprintf(tw, "%d\t%s\n", t.ID, esc(t.Name))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, pageFooter(p.Count, p.CurrentPage, p.TotalPages)+"\n")
	return err
}

func logTable(b *strings.Builder, logs []models.ConditionLog) {
	b.WriteString("| User | Date | Fatigue | Mood | Concern |\n|---|---|---|---|---|\n")
	for _, l := range logs {
		fmt.Fprintf(b, "| %d | %s | %d | %d | %s |\n", l.User, l.LogDate, l.FatigueLevel, l.MoodLevel, tableCell(l.BodyConcern))
	}
}

func WritePrettyStats(w io.Writer, st models.Stats, style string) error {
	var b strings.Builder
	b.WriteString("# Dashboard\n\n")
	fmt.Fprintf(&b, "- **Users:** %d (%d new in 30 days)\n", st.TotalUsers, st.NewUsers30d)
	fmt.Fprintf(&b, "- **Condition logs:** %d\n", st.TotalLogs)
	fmt.Fprintf(&b, "- **Exercises:** %d\n\n", st.TotalExercises)
	if len(st.RecentLogs) > 0 {
		b.WriteString("## Recent logs\n\n")
		logTable(&b, st.RecentLogs)
	}
	return renderMarkdown(w, b.String(), style)
}

func WritePrettyUsers(w io.Writer, p models.Page[models.User], style string) error {
	var b strings.Builder
	if len(p.Results) == 0 {
		b.WriteString("_No users found._\n")
	} else {
		b.WriteString("| ID | Username | Staff | Active | Joined |\n|---|---|---|---|---|\n")
		for _, u := range p.Results {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", u.ID, tableCell(u.Username), yesNo(u.IsStaff), yesNo(u.IsActive), joined(u))
		}
	}
	if err := renderMarkdown(w, b.String(), style); err != nil {
		return err
	}
	return writeFooter(w, p.Count, p.CurrentPage, p.TotalPages)
}

func WritePrettyUserDetail(w io.Writer, d models.UserDetail, style string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (#%d)\n\n", d.User.Username, d.User.ID)
	fmt.Fprintf(&b, "**Staff:** %s | **Active:** %s | **Joined:** %s\n\n", yesNo(d.User.IsStaff), yesNo(d.User.IsActive), joined(d.User))
	if len(d.RecentLogs) == 0 {
		b.WriteString("_No condition logs yet._\n")
	} else {
		b.WriteString("## Recent logs\n\n")
		logTable(&b, d.RecentLogs)
	}
	return renderMarkdown(w, b.String(), style)
}

func WritePrettyTags(w io.Writer, p models.Page[models.TagRecord], style string) error {
	var b strings.Builder
	if len(p.Results) == 0 {
		b.WriteString("_No tags yet._\n")
	}
	for _, t := range p.Results {
		fmt.Fprintf(&b, "- %s (#%d)\n", t.Name, t.ID)
	}
	if err := renderMarkdown(w, b.String(), style); err != nil {
		return err
	}
	return writeFooter(w, p.Count, p.CurrentPage, p.TotalPages)
}
