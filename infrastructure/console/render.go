// Package console renders query results for a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"api-monitor/domain"
)

type Layout string

const (
	LayoutList  Layout = "list"
	LayoutTable Layout = "table"
)

func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case "", LayoutList:
		return LayoutList, nil
	case LayoutTable:
		return LayoutTable, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want list or table)", s)
	}
}

const (
	timeFormat = "2006-01-02 15:04:05"
	barWidth   = 40
)

type Renderer struct {
	out    io.Writer
	layout Layout
	color  bool
}

func NewRenderer(out io.Writer, layout Layout, color bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	if layout == "" {
		layout = LayoutList
	}
	return &Renderer{out: out, layout: layout, color: color}
}

func (r *Renderer) paint(s string, colors text.Colors) string {
	if !r.color || len(colors) == 0 {
		return s
	}
	return colors.Sprint(s)
}

func methodColors(m domain.Method) text.Colors {
	switch m {
	case domain.MethodGet:
		return text.Colors{text.FgBlue}
	case domain.MethodPost:
		return text.Colors{text.FgGreen}
	case domain.MethodPut:
		return text.Colors{text.FgYellow}
	case domain.MethodPatch:
		return text.Colors{text.FgCyan}
	case domain.MethodDelete:
		return text.Colors{text.FgRed}
	}
	return nil
}

func statusColors(s domain.Status) text.Colors {
	switch {
	case s >= 500:
		return text.Colors{text.FgRed}
	case s >= 400:
		return text.Colors{text.FgYellow}
	case s >= 200 && s < 300:
		return text.Colors{text.FgGreen}
	}
	return nil
}

func severityColors(s domain.Severity) text.Colors {
	switch s {
	case domain.SeverityCritical:
		return text.Colors{text.FgHiRed, text.Bold}
	case domain.SeverityHigh:
		return text.Colors{text.FgRed}
	case domain.SeverityMedium:
		return text.Colors{text.FgYellow}
	}
	return text.Colors{text.FgHiBlack}
}

func (r *Renderer) Requests(res domain.Result[domain.Request]) {
	if len(res.Page.Items) == 0 {
		fmt.Fprintln(r.out, "No requests match the current filters.")
		footer(r.out, res.Page)
		return
	}

	if r.layout == LayoutTable {
		t := r.table()
		t.AppendHeader(table.Row{"Method", "Path", "Status", "Response Time", "Created At"})
		for _, req := range res.Page.Items {
			t.AppendRow(table.Row{
				r.paint(string(req.Method), methodColors(req.Method)),
				req.Path,
				r.paint(req.Status.String(), statusColors(req.Status)),
				fmt.Sprintf("%dms", req.ResponseTime),
				req.CreatedAt.Local().Format(timeFormat),
			})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
		t.Render()
	} else {
		l := r.list()
		for _, req := range res.Page.Items {
			l.AppendItem(fmt.Sprintf("%s %s %dms",
				r.paint(fmt.Sprintf("%-6s", req.Method), methodColors(req.Method)),
				r.paint(req.Status.String(), statusColors(req.Status)),
				req.ResponseTime,
			))
			l.Indent()
			l.AppendItem(req.Path)
			l.AppendItem(req.CreatedAt.Local().Format(timeFormat))
			l.UnIndent()
		}
		l.Render()
	}
	footer(r.out, res.Page)
}

func (r *Renderer) Problems(res domain.Result[domain.Problem]) {
	if len(res.Page.Items) == 0 {
		fmt.Fprintln(r.out, "No problems match the current filters.")
		footer(r.out, res.Page)
		return
	}

	if r.layout == LayoutTable {
		t := r.table()
		t.AppendHeader(table.Row{"Severity", "Title", "Endpoint", "Status", "Occurrences", "Last Occurrence"})
		for _, p := range res.Page.Items {
			t.AppendRow(table.Row{
				r.paint(strings.ToUpper(string(p.Severity)), severityColors(p.Severity)),
				p.Title,
				fmt.Sprintf("%s %s", p.Method, p.Path),
				r.paint(p.Status.String(), statusColors(p.Status)),
				p.Occurrences,
				p.LastOccurrence.Local().Format(timeFormat),
			})
		}
		t.Render()
	} else {
		l := r.list()
		for _, p := range res.Page.Items {
			l.AppendItem(fmt.Sprintf("%s %s",
				r.paint("["+strings.ToUpper(string(p.Severity))+"]", severityColors(p.Severity)),
				p.Title,
			))
			l.Indent()
			if p.Description != "" {
				l.AppendItem(p.Description)
			}
			l.AppendItem(fmt.Sprintf("%s %s -> %s", p.Method, p.Path, p.Status))
			l.AppendItem(fmt.Sprintf("%d occurrences, last %s", p.Occurrences, p.LastOccurrence.Local().Format(timeFormat)))
			l.UnIndent()
		}
		l.Render()
	}
	footer(r.out, res.Page)
}

// Timeline draws one bar per hour bucket, scaled to the peak.
func (r *Renderer) Timeline(tl domain.Timeline) {
	fmt.Fprintf(r.out, "Requests over the last %d hours    Total: %d    Peak: %d\n",
		len(tl.Buckets), tl.TotalCount, tl.PeakCount)

	t := r.table()
	t.AppendHeader(table.Row{"Hour", "Count", ""})
	for _, b := range tl.Buckets {
		bar := strings.Repeat("█", int(b.Ratio(tl.PeakCount)*barWidth+0.5))
		t.AppendRow(table.Row{b.Start.Format("15:04"), b.Count, r.paint(bar, text.Colors{text.FgCyan})})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

func footer[T any](out io.Writer, p domain.Page[T]) {
	markers := domain.PageNumbers(p.CurrentPage, p.TotalPages)
	parts := make([]string, 0, len(markers))
	for _, m := range markers {
		s := m.String()
		if !m.Ellipsis && m.Page == p.CurrentPage {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	nav := ""
	if p.HasPrev() {
		nav += "    < prev"
	}
	if p.HasNext() {
		nav += "    next >"
	}
	fmt.Fprintf(out, "\nShowing %d to %d of %d results    Page %s%s\n",
		p.FirstItem(), p.LastItem(), p.TotalItems, strings.Join(parts, " "), nav)
}

func (r *Renderer) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *Renderer) list() list.Writer {
	l := list.NewWriter()
	l.SetOutputMirror(r.out)
	l.SetStyle(list.StyleConnectedLight)
	return l
}
