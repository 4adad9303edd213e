package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/summary"
	"github.com/coatline/boothlag/internal/utils"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	badColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func outcomeLabel(result models.LineResult) string {
	switch result.Outcome {
	case models.OutcomeAppended:
		return okColor.Sprintf("Appended %d record(s)", result.Appended)
	case models.OutcomeRetracted:
		return warnColor.Sprintf("Retracted %d record(s)", result.Retracted)
	case models.OutcomeNoop:
		return dimColor.Sprint("Nothing to retract")
	case models.OutcomeDuplicate:
		return dimColor.Sprint("Duplicate submission ignored")
	default:
		return string(result.Outcome)
	}
}

func renderTable(w io.Writer, table []models.AnnotatedRecord) error {
	if len(table) == 0 {
		fmt.Fprintln(w, "Ledger is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tSLOT\tSTAGE\tDATE\tOPERATOR\tIN\tSTART\tEND\tDURATION\tLAG\tRECOMMENDED\tAVOIDABLE")
	for _, rec := range table {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.BatchID, rec.Slot, rec.Stage,
			dateText(rec.Date), stringText(rec.Operator),
			clockText(rec.TimeInBooth), clockText(rec.TimeStart), clockText(rec.TimeEnd),
			hoursText(rec.ProcessingDuration), hoursText(rec.LagDuration),
			hoursText(rec.RecommendedLag), avoidableText(rec.AvoidableLag))
	}
	return tw.Flush()
}

func renderFrontiers(w io.Writer, analysis models.Analysis) {
	bySlot := analysis.Frontiers.BySlot()
	if len(bySlot) == 0 {
		fmt.Fprintln(w, "No frontiers: the window holds no dated records.")
		return
	}
	slots := make([]string, 0, len(bySlot))
	for slot := range bySlot {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	for _, slot := range slots {
		fmt.Fprintf(w, "%s\n", slot)
		for _, stage := range models.Stages {
			frontier := bySlot[slot][stage]
			if len(frontier) == 0 {
				fmt.Fprintf(w, "  %-8s %s\n", stage, dimColor.Sprint("(insufficient data)"))
				continue
			}
			fmt.Fprintf(w, "  %-8s", stage)
			for _, p := range frontier {
				fmt.Fprintf(w, " (%s, %s)", formatHours(p.Duration), formatHours(p.Lag))
			}
			fmt.Fprintln(w)
		}
	}
}

func renderSummary(w io.Writer, groups []summary.GroupSummary) error {
	if len(groups) == 0 {
		fmt.Fprintln(w, "Ledger is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tSTAGE\tRECORDS\tWINDOWED\tVERTICES\tTOTAL AVOIDABLE\tMEAN AVOIDABLE\tLAST SEEN")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			g.Slot, g.Stage, g.Records, g.WindowedPoints, g.FrontierVertices,
			avoidableText(&g.TotalAvoidable), hoursText(g.MeanAvoidable), dateText(g.LastSeen))
	}
	return tw.Flush()
}

func dateText(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func stringText(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func clockText(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatClock(v)
}

func hoursText(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatHours(*v)
}

func avoidableText(v *float64) string {
	if v == nil {
		return "-"
	}
	if *v > 0 {
		return badColor.Sprint(formatHours(*v))
	}
	return okColor.Sprint(formatHours(*v))
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
