package recommendationController

import (
	"fmt"
	"strings"
)

const (
	NotSpecified = "Not specified"

	RecommendationSystemPrompt = "You are an expert agricultural advisor specializing in crop recommendations based on soil and climate analysis."
	TranslationSystemPrompt    = "You are a professional translator specializing in agricultural terminology. Translate to Swahili accurately."

	recommendationIntro = "You are an expert agricultural advisor helping farmers. Based on the following simple farm information, recommend the top 3-5 most suitable crops to grow.\n\n"
	recommendationAsks  = "\nProvide practical recommendations in simple language that a farmer can understand. For each crop, explain:\n" +
		"1. Crop name and variety (use local names if known)\n" +
		"2. Why it's good for this soil and rainfall\n" +
		"3. When to plant\n" +
		"4. Basic care tips\n" +
		"5. Expected harvest time\n\n" +
		"Keep language simple and practical."
	translationInstruction = "Translate the following crop recommendation to Swahili. Maintain the structure and keep technical terms clear:\n\n"
)

func BuildRecommendationPrompt(profile FarmProfile) string {
	var b strings.Builder

	b.WriteString(recommendationIntro)
	b.WriteString("Farm Information:\n")
	fmt.Fprintf(&b, "- Location: %s\n", orNotSpecified(profile.Location))
	fmt.Fprintf(&b, "- Soil Type: %s\n", orNotSpecified(profile.SoilType))
	fmt.Fprintf(&b, "- Annual Rainfall: %s\n", withUnit(profile.RainfallMm, " mm"))

	if profile.Detailed {
		fmt.Fprintf(&b, "- Season: %s\n", orNotSpecified(profile.Season))

		n := profile.Nutrients
		if n == nil {
			n = &SoilAnalysis{}
		}
		b.WriteString("\nSoil Analysis:\n")
		fmt.Fprintf(&b, "- Nitrogen (N): %s\n", n.Nitrogen)
		fmt.Fprintf(&b, "- Phosphorus (P): %s\n", n.Phosphorus)
		fmt.Fprintf(&b, "- Potassium (K): %s\n", n.Potassium)
		fmt.Fprintf(&b, "- pH Level: %s\n", n.PH)
		fmt.Fprintf(&b, "- Temperature: %s\n", withUnit(n.Temperature, "°C"))
		fmt.Fprintf(&b, "- Humidity: %s\n", withUnit(n.Humidity, "%"))
	}

	b.WriteString(recommendationAsks)
	return b.String()
}

func BuildTranslationPrompt(recommendationText string) string {
	return translationInstruction + recommendationText
}

func orNotSpecified(value string) string {
	if value == "" {
		return NotSpecified
	}
	return value
}

func withUnit(q Quantity, unit string) string {
	if !q.Valid {
		return NotSpecified
	}
	return q.Value.String() + unit
}
