package pitch

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are an expert startup pitch analyst and venture capitalist with 15+ years of experience evaluating business opportunities.

Your task is to provide comprehensive, honest, and constructive feedback on startup pitches. You have expertise in:
- Market analysis and competitive landscape assessment
- Business model evaluation and financial viability
- Presentation skills and pitch effectiveness
- Innovation assessment and competitive advantage analysis
- Investment potential and risk assessment

Always respond with valid JSON that matches the requested structure. Be specific, actionable, and professional in your feedback.`

const analysisStructure = `{
  "overallScore": (number between 70-100),
  "categoryScores": {
    "marketOpportunity": (number between 70-100),
    "businessModel": (number between 70-100),
    "presentation": (number between 70-100),
    "financialViability": (number between 70-100),
    "innovation": (number between 70-100)
  },
  "feedback": {
    "strengths": (array of 3-5 key strengths),
    "improvements": (array of 2-4 areas for improvement),
    "recommendations": (array of 3-5 specific recommendations)
  },
  "response": (string, 3-5 sentences in English: assessment, key points to highlight, improvements and actionable advice),
  "keynotes": (array of 3-5 key points from the pitch, only for audio/video content),
  "marketAnalysis": {
    "size": (estimated market size),
    "growth": (market growth rate),
    "competition": (competition level: Low/Moderate/High),
    "trends": (array of 3-5 key market trends)
  },
  "nftEligible": (boolean indicating if pitch qualifies for NFT)
}`

func analysisPrompt(p Pitch) string {
	title := p.Title
	if title == "" {
		title = "Unknown"
	}

	var b strings.Builder
	b.WriteString("Analyze the following startup pitch and provide a comprehensive evaluation in JSON format:\n\n")
	b.WriteString("**PITCH INFORMATION:**\n")
	fmt.Fprintf(&b, "- Title: %s\n", title)
	fmt.Fprintf(&b, "- Description: %s\n", p.Description)
	fmt.Fprintf(&b, "- Industry: %s\n", p.Industry)
	fmt.Fprintf(&b, "- Target Market: %s\n", p.TargetMarket)
	fmt.Fprintf(&b, "- Business Model: %s\n", p.BusinessModel)
	fmt.Fprintf(&b, "- Funding Amount: %s\n", p.FundingAmount)
	fmt.Fprintf(&b, "- Pitch Type: %s\n\n", p.Kind)
	b.WriteString("**PITCH CONTENT:**\n")
	b.WriteString(p.Content)
	b.WriteString("\n\nPlease provide a detailed analysis in the following JSON structure:\n\n")
	b.WriteString(analysisStructure)
	b.WriteString("\n\nFocus on market opportunity, business model viability, presentation quality, financial viability, innovation and overall pitch effectiveness.\n")
	if p.Kind.Spoken() {
		b.WriteString("This is a spoken pitch: include 3-5 key points that were effectively communicated.\n")
	}
	b.WriteString("Provide realistic scores based on the pitch content quality and completeness.\n")
	return b.String()
}

func generationPrompt(topic string) string {
	return fmt.Sprintf(`Generate a startup pitch for the domain: %s.

Return ONLY a valid JSON object with these exact keys:
- "problem": A brief description of the problem being solved
- "solution": A brief description of the proposed solution
- "market": Market size and opportunity information
- "business_model": Business model and revenue strategy

Ensure the JSON is complete and properly formatted. Do not include any text outside the JSON object.`, topic)
}

func slidePrompt(pitchJSON string) string {
	return "Take the following startup pitch JSON and rewrite it as a concise, engaging pitch deck slide. " +
		"Use bullet points and clear section headings.\n\n" +
		"Pitch JSON:\n" + pitchJSON + "\n\nFormatted Slide:"
}
