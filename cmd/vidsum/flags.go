package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vidsum/vidsum/pkg/vidsum/filter"
	"github.com/vidsum/vidsum/pkg/vidsum/output"
	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// resolveFormatter picks the output formatter from the -o flag.
// The template format additionally requires --template.
func resolveFormatter() (output.Formatter, error) {
	format := viper.GetString("output.format")
	switch format {
	case "":
		format = "pretty"
	case "template":
		tmpl := viper.GetString("template")
		if tmpl == "" {
			return nil, fmt.Errorf("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(tmpl), nil
	}

	formatter, err := output.Get(format)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}
	return formatter, nil
}

// buildFilter assembles a filter.Filter from the flag values bound in viper.
func buildFilter() (*filter.Filter, error) {
	opts := []filter.Option{
		filter.WithLimit(max(viper.GetInt("limit"), 0)),
	}

	if raw := viper.GetString("min_size"); raw != "" {
		size, err := types.ParseSize(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", raw, err)
		}
		opts = append(opts, filter.WithMinSize(size))
	}

	ageBounds := []struct {
		key  string
		flag string
		with func(time.Duration) filter.Option
	}{
		{"older_than", "older-than", filter.WithOlderThan},
		{"newer_than", "newer-than", filter.WithNewerThan},
	}
	for _, bound := range ageBounds {
		raw := viper.GetString(bound.key)
		if raw == "" {
			continue
		}
		d, err := filter.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", bound.flag, raw, err)
		}
		opts = append(opts, bound.with(d))
	}

	exts, err := flagExtensions()
	if err != nil {
		return nil, err
	}
	if len(exts) > 0 {
		opts = append(opts, filter.WithExtensions(exts...))
	}

	if raw := viper.GetString("status"); raw != "" {
		statuses, err := parseStatuses(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, filter.WithStatuses(statuses...))
	}

	if patterns := parseCommaSeparated(viper.GetString("include")); len(patterns) > 0 {
		opts = append(opts, filter.WithInclude(patterns...))
	}
	if patterns := parseCommaSeparated(viper.GetString("exclude")); len(patterns) > 0 {
		opts = append(opts, filter.WithExclude(patterns...))
	}

	ordering, err := orderingOptions()
	if err != nil {
		return nil, err
	}
	return filter.New(append(opts, ordering...)...), nil
}

// flagExtensions merges --type groups and --ext values into one extension set.
func flagExtensions() ([]string, error) {
	var exts []string
	if raw := viper.GetString("type"); raw != "" {
		groupExts, err := filter.ExpandTypeGroups(parseCommaSeparated(raw))
		if err != nil {
			return nil, err
		}
		exts = append(exts, groupExts...)
	}
	if raw := viper.GetString("ext"); raw != "" {
		exts = append(exts, filter.NormalizeExtensions(parseCommaSeparated(raw))...)
	}
	return exts, nil
}

// parseStatuses validates each comma-separated scan status.
func parseStatuses(raw string) ([]string, error) {
	parts := parseCommaSeparated(raw)
	statuses := make([]string, 0, len(parts))
	for _, s := range parts {
		parsed, err := filter.ParseStatus(s)
		if err != nil {
			return nil, fmt.Errorf("invalid status %q: %w", s, err)
		}
		statuses = append(statuses, parsed)
	}
	return statuses, nil
}

// orderingOptions resolves --sort and --reverse. Size and age sort
// descending by nature (largest and oldest first); path and scanned time
// ascend. --reverse flips whichever is natural.
func orderingOptions() ([]filter.Option, error) {
	raw := viper.GetString("sort")
	if raw == "" {
		raw = "size"
	}
	field, err := filter.ParseSortField(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sort field %q: %w", raw, err)
	}

	descending := !viper.GetBool("reverse")
	if field == filter.SortPath || field == filter.SortScanned {
		descending = !descending
	}
	return []filter.Option{filter.WithSortBy(field), filter.WithSortDescending(descending)}, nil
}

// parseCommaSeparated splits a comma-separated flag value, trimming
// whitespace and dropping empty entries.
func parseCommaSeparated(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
