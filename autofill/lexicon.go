package autofill

import "regexp"

var (
	yesLexicon     = regexp.MustCompile(`^(yes|y|true|1)\b|\b(yes|consent|agree|accept|authori[sz]e[ds]?|i am|i do|i have|i will|i can)\b`)
	noLexicon      = regexp.MustCompile(`^(no|n|false|0)\b|\b(no|not|decline|disagree|reject|don['’]?t|do not|i am not|i do not|i will not|i cannot)\b`)
	declineLexicon = regexp.MustCompile(`decline|prefer not|choose not|don['’]?t wish|do not wish|not to (answer|disclose|say|identify|self identify)|rather not`)
)

// classifyAnswer maps an option label onto the answer it expresses. Decline
// phrasing is checked first because it also contains negations; a label
// that reads as a negation is never taken for a yes.
func classifyAnswer(label string) (Answer, bool) {
	t := normalize(label)
	if t == "" {
		return "", false
	}
	if declineLexicon.MatchString(t) {
		return AnswerDecline, true
	}
	if noLexicon.MatchString(t) {
		return AnswerNo, true
	}
	if yesLexicon.MatchString(t) {
		return AnswerYes, true
	}
	return "", false
}
