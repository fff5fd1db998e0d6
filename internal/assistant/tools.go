package assistant

import (
	"fmt"

	"github.com/mjacobco/hvac-assistant/internal/availability"
)

// CheckAvailabilityToolName is the single tool the model may call.
const CheckAvailabilityToolName = "check_availability"

// CheckAvailabilityTool declares the calendar lookup function offered to the
// model on the first completion of every turn.
func CheckAvailabilityTool() ToolDeclaration {
	return ToolDeclaration{
		Name:        CheckAvailabilityToolName,
		Description: "Check available appointment time slots in the calendar. Use this when customers ask about scheduling, available times, or booking appointments.",
		Parameters: map[string]ToolParam{
			"startDate": {
				Type:        "string",
				Description: "Start date in YYYY-MM-DD format (e.g., 2026-02-10)",
			},
			"endDate": {
				Type:        "string",
				Description: "End date in YYYY-MM-DD format (e.g., 2026-02-17)",
			},
		},
		Required: []string{"startDate", "endDate"},
	}
}

// availabilityArgs is the validated form of a check_availability call.
type availabilityArgs struct {
	StartDate string
	EndDate   string
}

func parseAvailabilityArgs(call *ToolCall) (availabilityArgs, error) {
	args := availabilityArgs{
		StartDate: call.StringArg("startDate"),
		EndDate:   call.StringArg("endDate"),
	}
	if _, err := availability.ParseDate(args.StartDate); err != nil {
		return availabilityArgs{}, fmt.Errorf("assistant: tool startDate: %w", err)
	}
	if _, err := availability.ParseDate(args.EndDate); err != nil {
		return availabilityArgs{}, fmt.Errorf("assistant: tool endDate: %w", err)
	}
	return args, nil
}
