package confidence

import (
	"strings"

	"github.com/locateflow/locateflow/internal/domain"
)

// GenerateExplanation renders a human-readable reliability summary for a
// strategy: score tier, uniqueness and stability language, warnings, and
// an accessibility note for ARIA locators.
func (s *Scorer) GenerateExplanation(strategy *domain.LocatorStrategy) string {
	if strategy == nil {
		return ""
	}

	var b strings.Builder

	switch {
	case strategy.Confidence.Score >= 80:
		b.WriteString("High reliability locator.")
	case strategy.Confidence.Score >= 50:
		b.WriteString("Medium reliability locator.")
	default:
		b.WriteString("Low reliability locator.")
	}

	if strategy.IsUnique {
		b.WriteString(" Uniquely identifies the element in the document.")
	} else {
		b.WriteString(" Does not uniquely identify the element; additional qualification may be needed.")
	}

	if strategy.IsStable {
		b.WriteString(" Value is likely to survive routine markup changes.")
	} else {
		b.WriteString(" Value may change across builds or releases.")
	}

	if len(strategy.Confidence.Warnings) > 0 {
		b.WriteString(" Warnings: ")
		b.WriteString(strings.Join(strategy.Confidence.Warnings, "; "))
		b.WriteString(".")
	}

	if strategy.Type == domain.LocatorTypeARIA {
		b.WriteString(" Uses accessibility attributes, which are recommended for durable test selectors.")
	}

	return b.String()
}
