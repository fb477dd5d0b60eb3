// Package analytics computes derived project metrics from a task
// snapshot. Every function is pure: same snapshot and range in, same
// numbers out. Nothing here touches the database or caches results.
package analytics

import (
	"sort"
	"time"

	"taskflow_backend/internal/models"
	"taskflow_backend/internal/services/dto"
)

const msPerDay = 86_400_000

const dateLayout = "2006-01-02"

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the inclusive number of calendar days covered by
// [start, end]. A same-day range counts as 1.
func daysBetween(start, end time.Time) int {
	return int(dayOf(end).Sub(dayOf(start)).Hours()/24) + 1
}

// durationDays converts a timestamp delta to fractional days via
// millisecond arithmetic.
func durationDays(from, to time.Time) float64 {
	return float64(to.Sub(from).Milliseconds()) / msPerDay
}

// ProjectMetrics aggregates the full task snapshot of one project.
// A project with zero tasks yields all-zero metrics.
func ProjectMetrics(tasks []models.Task, now time.Time) dto.ProjectMetrics {
	metrics := dto.ProjectMetrics{
		TasksByStatus:   make(map[string]int),
		TasksByPriority: make(map[string]int),
		TasksByAssignee: []dto.AssigneeTaskBreakdown{},
	}

	var completionDaysSum float64
	var completedWithTimestamp int
	byAssignee := make(map[string]*dto.AssigneeTaskBreakdown)
	var assigneeOrder []string

	for i := range tasks {
		t := &tasks[i]
		metrics.TotalTasks++
		metrics.TasksByStatus[string(t.Status)]++
		metrics.TasksByPriority[string(t.Priority)]++

		if t.Status == models.TaskStatusDone {
			metrics.CompletedTasks++
			if t.CompletedAt != nil {
				completionDaysSum += durationDays(t.CreatedAt, *t.CompletedAt)
				completedWithTimestamp++
			}
		}
		if t.IsOverdue(now) {
			metrics.OverdueTasks++
		}

		if t.AssigneeID != nil {
			entry, ok := byAssignee[*t.AssigneeID]
			if !ok {
				entry = &dto.AssigneeTaskBreakdown{UserID: *t.AssigneeID}
				if t.Assignee != nil {
					entry.Name = t.Assignee.FullName()
				}
				byAssignee[*t.AssigneeID] = entry
				assigneeOrder = append(assigneeOrder, *t.AssigneeID)
			}
			entry.Total++
			if t.Status == models.TaskStatusDone {
				entry.Completed++
			}
		}
	}

	if metrics.TotalTasks > 0 {
		metrics.CompletionRate = float64(metrics.CompletedTasks) / float64(metrics.TotalTasks) * 100
	}
	if completedWithTimestamp > 0 {
		metrics.AvgCompletionDays = completionDaysSum / float64(completedWithTimestamp)
	}
	for _, id := range assigneeOrder {
		metrics.TasksByAssignee = append(metrics.TasksByAssignee, *byAssignee[id])
	}
	return metrics
}

// TaskVelocity produces one point per calendar day in [start, end]
// inclusive. The inProgress series counts tasks created on or before
// each day whose current status is in_progress; it is a lookback over
// present state, not a reconstruction of historical status.
func TaskVelocity(tasks []models.Task, start, end time.Time) []dto.VelocityPoint {
	startDay := dayOf(start)
	days := daysBetween(start, end)
	points := make([]dto.VelocityPoint, 0, days)

	for i := 0; i < days; i++ {
		day := startDay.AddDate(0, 0, i)
		dayEnd := day.AddDate(0, 0, 1)
		point := dto.VelocityPoint{Date: day.Format(dateLayout)}

		for j := range tasks {
			t := &tasks[j]
			created := dayOf(t.CreatedAt)
			if created.Equal(day) {
				point.Created++
			}
			if t.CompletedAt != nil && dayOf(*t.CompletedAt).Equal(day) {
				point.Completed++
			}
			if t.Status == models.TaskStatusInProgress && t.CreatedAt.Before(dayEnd) {
				point.InProgress++
			}
		}
		points = append(points, point)
	}
	return points
}

// BurndownChart plots the ideal line against the open-task count. The
// baseline is the number of tasks created on or before range start;
// actual and remaining intentionally carry the same value.
func BurndownChart(tasks []models.Task, start, end time.Time) []dto.BurndownPoint {
	startDay := dayOf(start)
	days := daysBetween(start, end)

	var totalTasks int
	for i := range tasks {
		if !dayOf(tasks[i].CreatedAt).After(startDay) {
			totalTasks++
		}
	}
	idealBurnRate := 0.0
	if days > 0 {
		idealBurnRate = float64(totalTasks) / float64(days)
	}

	points := make([]dto.BurndownPoint, 0, days)
	for i := 0; i < days; i++ {
		day := startDay.AddDate(0, 0, i)

		var createdByDay, completedByDay int
		for j := range tasks {
			t := &tasks[j]
			if !dayOf(t.CreatedAt).After(day) {
				createdByDay++
			}
			if t.CompletedAt != nil && !dayOf(*t.CompletedAt).After(day) {
				completedByDay++
			}
		}

		ideal := float64(totalTasks) - idealBurnRate*float64(i+1)
		if ideal < 0 {
			ideal = 0
		}
		open := createdByDay - completedByDay
		points = append(points, dto.BurndownPoint{
			Date:      day.Format(dateLayout),
			Ideal:     ideal,
			Actual:    open,
			Remaining: open,
		})
	}
	return points
}

// TeamProductivity scores each assignee over their assigned tasks.
// Score is completion percentage minus a 5-point penalty per overdue
// task, floored at zero, sorted descending.
func TeamProductivity(tasks []models.Task, now time.Time) []dto.ProductivityEntry {
	type accumulator struct {
		entry             dto.ProductivityEntry
		completionDaysSum float64
		completedWithTime int
	}
	byAssignee := make(map[string]*accumulator)
	var order []string

	for i := range tasks {
		t := &tasks[i]
		if t.AssigneeID == nil {
			continue
		}
		acc, ok := byAssignee[*t.AssigneeID]
		if !ok {
			acc = &accumulator{entry: dto.ProductivityEntry{UserID: *t.AssigneeID}}
			if t.Assignee != nil {
				acc.entry.Name = t.Assignee.FullName()
			}
			byAssignee[*t.AssigneeID] = acc
			order = append(order, *t.AssigneeID)
		}

		acc.entry.AssignedTasks++
		switch t.Status {
		case models.TaskStatusDone:
			acc.entry.CompletedTasks++
			if t.CompletedAt != nil {
				acc.completionDaysSum += durationDays(t.CreatedAt, *t.CompletedAt)
				acc.completedWithTime++
			}
		case models.TaskStatusInProgress:
			acc.entry.InProgressTasks++
		}
		if t.IsOverdue(now) {
			acc.entry.OverdueTasks++
		}
	}

	entries := make([]dto.ProductivityEntry, 0, len(order))
	for _, id := range order {
		acc := byAssignee[id]
		if acc.entry.AssignedTasks > 0 {
			acc.entry.Score = float64(acc.entry.CompletedTasks)/float64(acc.entry.AssignedTasks)*100 -
				5*float64(acc.entry.OverdueTasks)
			if acc.entry.Score < 0 {
				acc.entry.Score = 0
			}
		}
		if acc.completedWithTime > 0 {
			acc.entry.AvgCompletionDays = acc.completionDaysSum / float64(acc.completedWithTime)
		}
		entries = append(entries, acc.entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Timeline reshapes velocity points into label-aligned parallel series.
func Timeline(points []dto.VelocityPoint) dto.Timeline {
	timeline := dto.Timeline{
		Labels:     make([]string, 0, len(points)),
		Created:    make([]int, 0, len(points)),
		Completed:  make([]int, 0, len(points)),
		InProgress: make([]int, 0, len(points)),
	}
	for _, p := range points {
		timeline.Labels = append(timeline.Labels, p.Date)
		timeline.Created = append(timeline.Created, p.Created)
		timeline.Completed = append(timeline.Completed, p.Completed)
		timeline.InProgress = append(timeline.InProgress, p.InProgress)
	}
	return timeline
}
