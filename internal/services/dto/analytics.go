package dto

type ProjectMetrics struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
	OverdueTasks   int     `json:"overdueTasks"`
	// AvgCompletionDays is mean done-task age in fractional days.
	AvgCompletionDays float64                 `json:"avgCompletionTime"`
	TasksByStatus     map[string]int          `json:"tasksByStatus"`
	TasksByPriority   map[string]int          `json:"tasksByPriority"`
	TasksByAssignee   []AssigneeTaskBreakdown `json:"tasksByAssignee"`
}

type AssigneeTaskBreakdown struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

type VelocityPoint struct {
	Date       string `json:"date"`
	Completed  int    `json:"completed"`
	Created    int    `json:"created"`
	InProgress int    `json:"inProgress"`
}

type BurndownPoint struct {
	Date      string  `json:"date"`
	Remaining int     `json:"remaining"`
	Actual    int     `json:"actual"`
	Ideal     float64 `json:"ideal"`
}

type ProductivityEntry struct {
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	AssignedTasks     int     `json:"assignedTasks"`
	CompletedTasks    int     `json:"completedTasks"`
	InProgressTasks   int     `json:"inProgressTasks"`
	OverdueTasks      int     `json:"overdueTasks"`
	AvgCompletionDays float64 `json:"avgCompletionTime"`
	Score             float64 `json:"productivityScore"`
}

// Timeline is velocity reshaped into label-aligned series for direct
// charting.
type Timeline struct {
	Labels     []string `json:"labels"`
	Created    []int    `json:"created"`
	Completed  []int    `json:"completed"`
	InProgress []int    `json:"inProgress"`
}
