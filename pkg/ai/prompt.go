package ai

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot names mirror the questionnaire template vocabulary: colaborador_qN for
// the self answer, lider_qN for the leader answer, _justificativa suffixes for
// the explanations and final_qN for the composite. Slots are keyed by the
// stored question number, never by array position.
const (
	slotSelfPrefix   = "colaborador_q"
	slotLeaderPrefix = "lider_q"
	slotFinalPrefix  = "final_q"
	slotSuffixReason = "_justificativa"
	slotName         = "nome_colaborador"
)

// BuildSlots flattens the narrative input into the named template slots.
func BuildSlots(input NarrativeInput) map[string]string {
	slots := make(map[string]string, len(input.Questions)*5+1)

	for _, question := range input.Questions {
		number := strconv.Itoa(question.QuestionNumber)
		slots[slotSelfPrefix+number] = strconv.Itoa(question.SelfAnswer)
		slots[slotSelfPrefix+number+slotSuffixReason] = question.SelfExplanation
		slots[slotLeaderPrefix+number] = strconv.Itoa(question.LeaderAnswer)
		slots[slotLeaderPrefix+number+slotSuffixReason] = question.LeaderExplanation
		slots[slotFinalPrefix+number] = strconv.FormatFloat(question.Composite, 'f', -1, 64)
	}

	slots[slotName] = input.CollaboratorName

	return slots
}

// RenderTemplate substitutes {slot} placeholders in the system prompt
// template. An unresolved placeholder is an error so sparse or renumbered
// questionnaires fail loudly instead of producing a silently misaligned
// prompt.
func RenderTemplate(template string, slots map[string]string) (string, error) {
	pairs := make([]string, 0, len(slots)*2)
	for name, value := range slots {
		pairs = append(pairs, "{"+name+"}", value)
	}

	rendered := strings.NewReplacer(pairs...).Replace(template)

	if open := strings.Index(rendered, "{"); open >= 0 {
		if close := strings.Index(rendered[open:], "}"); close >= 0 {
			return "", fmt.Errorf("unresolved prompt slot %s", rendered[open:open+close+1])
		}
	}

	return rendered, nil
}
