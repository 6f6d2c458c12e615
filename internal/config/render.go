package config

import (
	"fmt"
	"strings"
	"time"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var b strings.Builder
	b.WriteString("# fitcoach configuration (TOML)\n\n")

	opts := GetConfigOptions()
	sections := make(map[string][]ConfigOption)
	sectionOrder := make([]string, 0)

	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			writeTOMLOption(&b, o.Key, o.Default, o.Comment)
			continue
		}
		if _, seen := sections[section]; !seen {
			sectionOrder = append(sectionOrder, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}

	for _, section := range sectionOrder {
		b.WriteString("[" + section + "]\n")
		for _, o := range sections[section] {
			writeTOMLOption(&b, o.Key, o.Default, o.Comment)
		}
	}
	return b.String()
}

func writeTOMLOption(b *strings.Builder, key string, value any, comment string) {
	if comment != "" {
		b.WriteString("# " + comment + "\n")
	}
	switch v := value.(type) {
	case string:
		fmt.Fprintf(b, "%s = %q\n\n", key, v)
	case time.Duration:
		fmt.Fprintf(b, "%s = %q\n\n", key, v.String())
	case bool, int, int64, float64:
		fmt.Fprintf(b, "%s = %v\n\n", key, v)
	default:
		fmt.Fprintf(b, "# %s: unsupported default %T\n\n", key, v)
	}
}
