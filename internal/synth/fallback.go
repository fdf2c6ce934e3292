package synth

import (
	"fmt"
	"strings"

	"arbiter/internal/audit"
	"arbiter/internal/lang"
	"arbiter/internal/policy"
	"arbiter/internal/textsim"
)

// guidanceVariant is one deterministic fallback guidance template. The
// variants of a language deliberately share almost no vocabulary, so any two
// of them stay below the cross-finding similarity threshold even when both
// findings carry the same evidence.
type guidanceVariant struct {
	body        string
	translation string // trailing annotation, non-default languages only
}

var fallbackGuidanceEN = []guidanceVariant{
	{body: "This statement makes a commitment the audience cannot independently " +
		"confirm, and unsupported assurances of this kind tend to leave readers " +
		"with a false impression of certainty about what the product or offer " +
		"can deliver."},
	{body: "Claims phrased with absolute confidence give an audience no room to " +
		"weigh the actual likelihood of the promised outcome, which can distort " +
		"a purchasing decision made on the strength of this wording."},
	{body: "An average reader takes wording of this sort at face value, and the " +
		"gap between what is promised and what can actually be shown is wide " +
		"enough to mislead even a careful buyer."},
}

var fallbackGuidanceHI = []guidanceVariant{
	{
		body: "यह कथन ऐसा भरोसा जताता है जिसकी पुष्टि पाठक स्वयं नहीं कर सकते, और इस " +
			"प्रकार के असमर्थित दावे पाठकों में निश्चितता की झूठी धारणा बना सकते हैं।",
		translation: "This statement makes an assurance readers cannot confirm " +
			"for themselves, and unsupported claims of this kind can create a " +
			"false sense of certainty.",
	},
	{
		body: "पूर्ण विश्वास के साथ किए गए दावे पाठक को वास्तविक संभावना आँकने का कोई " +
			"अवसर नहीं देते, जिससे खरीद का निर्णय इसी शब्दावली के भरोसे बिगड़ सकता है।",
		translation: "Claims made with absolute confidence give the reader no " +
			"chance to weigh the real likelihood, so a purchase decision resting " +
			"on this wording can go astray.",
	},
	{
		body: "साधारण पाठक इस तरह की भाषा को ज्यों का त्यों सच मान लेता है, और वादे तथा " +
			"प्रमाण के बीच की दूरी एक सतर्क खरीदार को भी भ्रमित कर सकती है।",
		translation: "An ordinary reader takes language of this sort at face " +
			"value, and the distance between promise and proof can mislead even " +
			"a careful buyer.",
	},
}

// applyFallback replaces every failing field with deterministic, rule-derived
// text. Evidence is never replaced here; the resolver already guaranteed it.
// The accepted findings are consulted so fallback guidance stays unique
// within the response.
func applyFallback(f audit.Finding, reasons []policy.Reason, langTag string, accepted []audit.Finding) audit.Finding {
	needGuidance, needFix := classifyReasons(reasons)
	if needGuidance {
		f.Guidance = fallbackGuidance(f.Evidence, langTag, accepted)
	}
	if needFix {
		f.Fix = fallbackFix(f.Evidence, langTag)
	}
	return f
}

// fallbackGuidance produces guidance from the template variants plus a
// clause naming the finding's own evidence. The starting variant rotates
// with the accepted count, and each candidate is checked against the
// accepted guidances so two fallback findings never read as repeats.
func fallbackGuidance(evid, langTag string, accepted []audit.Finding) string {
	variants := fallbackGuidanceEN
	if langTag == lang.TagHindi {
		variants = fallbackGuidanceHI
	}
	clause := evidenceClause(evid, langTag)

	start := len(accepted) % len(variants)
	var best string
	bestSim := 2.0
	for i := range variants {
		cand := renderGuidance(variants[(start+i)%len(variants)], clause)
		sim := 0.0
		for _, prior := range accepted {
			if s := textsim.Jaccard(cand, prior.Guidance); s > sim {
				sim = s
			}
		}
		if sim < textsim.CrossFindingMax {
			return cand
		}
		if sim < bestSim {
			best, bestSim = cand, sim
		}
	}
	return best
}

func renderGuidance(v guidanceVariant, clause string) string {
	s := v.body + " " + clause
	if v.translation != "" {
		s += "\n" + policy.TranslationPrefix + " " + v.translation
	}
	return s
}

// evidenceClause ties the fallback guidance to this finding's evidence by
// quoting its leading words.
func evidenceClause(evid, langTag string) string {
	words := strings.Fields(evid)
	if len(words) > 4 {
		words = words[:4]
	}
	lead := strings.TrimRight(strings.Join(words, " "), ".,;:!?।")
	if lead == "" {
		lead = "the flagged statement"
	}
	if langTag == lang.TagHindi {
		return fmt.Sprintf("यहाँ विचाराधीन शब्द %q हैं।", lead)
	}
	return fmt.Sprintf("The specific commitment at issue here is the wording %q.", lead)
}

// fallbackFix derives two replacement options from the evidence itself: a
// leading portion of the evidence wording plus a qualifying tail, keeping
// lexical overlap inside the grounded-rewrite interval.
func fallbackFix(evid string, langTag string) string {
	words := strings.Fields(evid)
	if len(words) == 0 {
		words = []string{"the flagged statement"}
	}
	keep := len(words) * 3 / 5
	if keep < 1 {
		keep = 1
	}
	base := strings.TrimRight(strings.Join(words[:keep], " "), ".,;:!?।")

	if langTag == lang.TagHindi {
		return policy.FormatFix(
			base+", परिणाम व्यक्ति के अनुसार भिन्न हो सकते हैं",
			base+", पूरा विवरण उपलब्ध स्रोत में दिया गया है",
		)
	}
	return policy.FormatFix(
		base+", subject to individual circumstances",
		base+", as described in the full offer details",
	)
}
