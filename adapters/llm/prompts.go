package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"visioncheck/domain/trend"
	"visioncheck/domain/vision"
	"visioncheck/ports"
)

const baseInstruction = `You are an informational assistant that explains vision screening results objectively.
Your role is to summarize data and provide general, educational information.
IMPORTANT:
1. NEVER give a medical diagnosis.
2. Always stress that this application does not replace medical advice.
3. The final entry of the "recommendations" list MUST ALWAYS be "` + vision.ReferralRecommendation + `"
4. Return only a single valid JSON object matching the given schema. Do NOT add any other text, explanation, or markdown formatting.`

// testInstructions holds the per-test analysis directive included in
// every prompt.
var testInstructions = map[vision.TestType]string{
	vision.TestSnellen:     `Analyze the following Snellen visual acuity result. In 'summary', explain what the score means in practical terms (for example, what 20/40 vision means day to day). Mention common refractive errors such as myopia and hyperopia. In 'recommendations', give concrete advice such as the 20-20-20 rule and adjusting workspace lighting.`,
	vision.TestColorBlind:  `Analyze the following Ishihara color vision result. In 'summary', explain the detected deficiency type and how it affects everyday color perception. In 'causes', mention the hereditary nature of the condition. 'recommendations' may include practical tips such as color-assist applications.`,
	vision.TestAstigmatism: `Analyze the following astigmatism screening result. In 'summary', explain in simple terms what astigmatism is (an unevenly curved cornea) and what the user's selection suggests. 'recommendations' should stress the importance of an eye exam for properly corrected lenses.`,
	vision.TestAmsler:      `Analyze the following Amsler grid result. EMPHASIZE the importance of this test for macular health. In 'summary', explain that any distortion can be an early sign of serious retinal disease. 'recommendations' must strongly urge seeing an ophthalmologist IMMEDIATELY if an issue was detected.`,
	vision.TestDuochrome:   `Analyze the following duochrome (red-green) result. Explain the principle behind the test (chromatic aberration). In 'summary', explain what a 'myopic' (over-corrected) or 'hyperopic' (under-corrected) outcome means for the user's current prescription. 'recommendations' should suggest a refraction check-up.`,
}

// BuildPrompt renders the full generation prompt for a request: the
// base safety instruction, the per-test directive, optional profile
// and trend context, and the serialized result.
func BuildPrompt(req ports.ReportRequest) string {
	var b strings.Builder
	b.WriteString(baseInstruction)

	if req.Locale != "" {
		fmt.Fprintf(&b, "\n5. Write all natural-language fields in the language with IETF tag %q.", req.Locale)
	}

	instruction, ok := testInstructions[req.TestType]
	if !ok {
		instruction = "Analyze the following vision screening data."
	}
	b.WriteString("\n\n**CONTEXT:**\n")
	b.WriteString(instruction)

	if req.Profile != nil {
		fmt.Fprintf(&b, "\n\n**USER PROFILE:**\nName: %s, Age: %s", req.Profile.Name, req.Profile.Age)
	}

	if summary, ok := trend.Summarize(req.History); ok {
		fmt.Fprintf(&b, "\n\n**HISTORY:**\n%s. Use this for the 'trend' field.", summary.Describe())
	}

	b.WriteString("\n\n**USER DATA:**\n")
	b.WriteString(marshalResult(req.Result))
	return b.String()
}

func marshalResult(result vision.TestResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		// Results are plain value structs; this cannot realistically fail.
		return fmt.Sprintf("%+v", result)
	}
	return string(data)
}
