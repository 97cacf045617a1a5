package hevy

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

func kgToLbs(kg float64) float64 {
	return float64(int(kg*2.20462*10+0.5)) / 10
}

func parseStartTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatWorkouts renders workouts as a readable text block for prompt
// context, most recent first, with per-set detail and notes preserved.
func FormatWorkouts(workouts []Workout, now time.Time) string {
	if len(workouts) == 0 {
		return "No workouts found for the requested window."
	}

	sorted := make([]Workout, len(workouts))
	copy(sorted, workouts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime > sorted[j].StartTime
	})

	var lines []string
	for _, w := range sorted {
		title := w.Title
		if title == "" {
			title = "Untitled Workout"
		}
		lines = append(lines, "Workout: "+title)
		lines = append(lines, fmt.Sprintf("  Start: %s | End: %s%s", w.StartTime, w.EndTime, recencyNote(w.StartTime, now)))
		if w.Description != "" {
			lines = append(lines, "  Notes: "+w.Description)
		}

		if len(w.Exercises) == 0 {
			lines = append(lines, "  Exercises: none logged")
			continue
		}
		for i, ex := range w.Exercises {
			name := ex.Title
			if name == "" {
				name = "Unknown Exercise"
			}
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, name))
			if ex.Notes != "" {
				lines = append(lines, "     Exercise notes: "+ex.Notes)
			}
			if len(ex.Sets) == 0 {
				lines = append(lines, "     Sets: none")
				continue
			}
			for si, s := range ex.Sets {
				parts := []string{fmt.Sprintf("Set %d", si+1)}
				if s.Type != "" {
					parts = append(parts, "("+s.Type+")")
				}
				if s.WeightKg != nil {
					parts = append(parts, fmt.Sprintf("%.1f lbs", kgToLbs(*s.WeightKg)))
				}
				if s.Reps != nil {
					parts = append(parts, fmt.Sprintf("x %d reps", *s.Reps))
				}
				if s.DistanceMeters != nil {
					parts = append(parts, fmt.Sprintf("%.0f m", *s.DistanceMeters))
				}
				if s.DurationSeconds != nil {
					parts = append(parts, fmt.Sprintf("%.0f s", *s.DurationSeconds))
				}
				if s.RPE != nil {
					parts = append(parts, fmt.Sprintf("RPE %.1f", *s.RPE))
				}
				lines = append(lines, "     "+strings.Join(parts, " "))
			}
		}
		lines = append(lines, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func recencyNote(startTime string, now time.Time) string {
	t, ok := parseStartTime(startTime)
	if !ok {
		return ""
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return " (today)"
	case days == 1:
		return " (yesterday)"
	case days <= 3:
		return fmt.Sprintf(" (%d days ago - muscles may still be recovering)", days)
	default:
		return fmt.Sprintf(" (%d days ago)", days)
	}
}

type frequencyEntry struct {
	templateID string
	title      string
	sessions   int
	sets       int
	reps       int
	duration   float64
	volumeKg   float64
}

// FormatFrequency summarizes how often each exercise appears across the given
// workouts, sorted by session count then title.
func FormatFrequency(workouts []Workout, start, end time.Time) string {
	window := fmt.Sprintf("%s → %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if len(workouts) == 0 {
		return "No workouts found between " + window + "."
	}

	stats := map[string]*frequencyEntry{}
	for _, w := range workouts {
		if t, ok := parseStartTime(w.StartTime); ok && (t.Before(start) || t.After(end)) {
			continue
		}
		seen := map[string]bool{}
		for _, ex := range w.Exercises {
			id := ex.TemplateID
			if id == "" {
				id = "title:" + ex.Title
			}
			entry, ok := stats[id]
			if !ok {
				title := ex.Title
				if title == "" {
					title = "Unknown Exercise"
				}
				entry = &frequencyEntry{templateID: id, title: title}
				stats[id] = entry
			}
			if !seen[id] {
				entry.sessions++
				seen[id] = true
			}
			for _, s := range ex.Sets {
				entry.sets++
				if s.Reps != nil {
					entry.reps += *s.Reps
					if s.WeightKg != nil {
						entry.volumeKg += *s.WeightKg * float64(*s.Reps)
					}
				}
				if s.DurationSeconds != nil {
					entry.duration += *s.DurationSeconds
				}
			}
		}
	}

	entries := make([]*frequencyEntry, 0, len(stats))
	for _, e := range stats {
		if e.sessions > 0 {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return "No exercise data found between " + window + "."
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sessions != entries[j].sessions {
			return entries[i].sessions > entries[j].sessions
		}
		return entries[i].title < entries[j].title
	})

	lines := []string{"Exercise frequency " + window + " (sorted by sessions):"}
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s (id: %s): sessions %d", i+1, e.title, e.templateID, e.sessions)
		if e.sets > 0 {
			line += fmt.Sprintf(", sets %d", e.sets)
		}
		if e.reps > 0 {
			line += fmt.Sprintf(", reps %d", e.reps)
		}
		if e.duration > 0 {
			line += fmt.Sprintf(", duration %.0fs", e.duration)
		}
		if e.volumeKg > 0 {
			line += fmt.Sprintf(", total volume %.1f lbs", kgToLbs(e.volumeKg))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
