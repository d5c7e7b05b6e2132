package router

import "strings"

// RoutingDecision is the classifier output for one request.
type RoutingDecision struct {
	Domain Domain `json:"domain"`
	// Confidence is the number of distinct keywords matched for Domain.
	Confidence int            `json:"confidence"`
	RawScores  map[Domain]int `json:"raw_scores"`
}

// Classify maps free text to a domain by counting distinct keyword hits.
//
// Each keyword counts once however often it occurs. The highest score wins;
// ties go to the domain earliest in Domains(). No hits yields DomainUnknown
// with confidence 0.
func Classify(text string) RoutingDecision {
	lower := strings.ToLower(text)

	decision := RoutingDecision{
		Domain:    DomainUnknown,
		RawScores: make(map[Domain]int, len(keywords)),
	}

	for _, d := range Domains() {
		score := 0
		for _, kw := range keywords[d] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		decision.RawScores[d] = score
		if score > decision.Confidence {
			decision.Domain = d
			decision.Confidence = score
		}
	}

	return decision
}
