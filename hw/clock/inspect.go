package clock

import (
	"fmt"
	"strconv"

	"emu65/hw/inspect"
)

func (c *Clock) Inspect() inspect.Report {
	st := c.Stats()
	return inspect.Report{
		ID:   "clock",
		Type: "clock",
		Name: fmt.Sprintf("%gMHz", c.cfg.FrequencyMHz),
		Registers: []inspect.Field{
			{Name: "state", Value: st.State.String()},
			{Name: "budget", Value: strconv.FormatInt(st.Budget, 10)},
		},
		Stats: []inspect.Field{
			{Name: "cycles", Value: strconv.FormatInt(st.TotalCycles, 10)},
			{Name: "iterations", Value: strconv.FormatInt(st.Iterations, 10)},
			{Name: "clamps", Value: strconv.FormatInt(st.ClampCount, 10)},
			{Name: "actual", Value: fmt.Sprintf("%.4fMHz", st.ActualMHz)},
			{Name: "drift", Value: fmt.Sprintf("%+.2f%%", st.Drift*100)},
			{Name: "compensation", Value: fmt.Sprintf("%.4f", st.Compensation)},
			{Name: "wait", Value: st.Wait.String()},
			{Name: "frame", Value: st.AvgFrame.String()},
			{Name: "paused", Value: st.Paused.String()},
		},
	}
}
