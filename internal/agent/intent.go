package agent

import (
	"strings"

	"github.com/balcaohq/balcao/internal/tools"
)

// scheduleKeywords route first-turn tool forcing toward the appointments
// tool when the merchant is clearly asking about their schedule. Accented
// and unaccented spellings are both listed; inbound text is matched as-is.
var scheduleKeywords = []string{
	"agenda",
	"compromisso",
	"agendamento",
	"horário",
	"horario",
	"appointment",
	"schedule",
}

// firstTool picks the tool forced on the first iteration. The default is the
// date anchor; a clear schedule question skips straight to appointments since
// that tool needs no date arithmetic.
func firstTool(message string) string {
	lowered := strings.ToLower(message)
	for _, kw := range scheduleKeywords {
		if strings.Contains(lowered, kw) {
			return tools.ToolUpcomingAppointments
		}
	}
	return tools.AnchorTool
}
