package content

import "strings"

// TemplateData are the values substituted into prompt templates.
type TemplateData struct {
	Transcript   string
	MeetingTitle string
}

// RenderTemplate substitutes {transcript} and {meeting_title} verbatim.
// Placeholders it does not know stay literal.
func RenderTemplate(tpl string, data TemplateData) string {
	r := strings.NewReplacer(
		"{transcript}", data.Transcript,
		"{meeting_title}", data.MeetingTitle,
	)
	return r.Replace(tpl)
}

const emailPromptTemplate = `You are a professional assistant helping to write a follow-up email after a meeting.

Meeting Title: {meeting_title}

Meeting Transcript:
{transcript}

Please generate a professional, concise follow-up email that:
1. Thanks attendees for their participation
2. Summarizes key discussion points and decisions
3. Lists action items (if any)
4. Mentions next steps or follow-up meetings (if applicable)
5. Has a friendly, professional tone

Format the email as plain text with a subject line, greeting, body paragraphs
and closing. Do not include email headers (From, To, etc.), just the email
content.`

// platformGuidelines tune the default post prompt per platform.
var platformGuidelines = map[string]string{
	"linkedin": "professional, business-focused, industry insights, networking",
	"facebook": "engaging, conversational, community-focused, relatable",
}

func defaultPostTemplate(platform string) string {
	guidelines, ok := platformGuidelines[platform]
	if !ok {
		guidelines = "engaging and professional"
	}

	return `You are a social media content creator helping to create a ` + platform + ` post based on a meeting.

Meeting Title: {meeting_title}

Meeting Transcript:
{transcript}

Please generate a ` + platform + ` post that:
1. Is ` + guidelines + ` in tone
2. Highlights key insights or takeaways from the meeting
3. Is engaging and encourages interaction
4. Is appropriate for ` + platform + ` (consider platform character limits and style)
5. Uses relevant hashtags if appropriate for ` + platform + `

Generate only the post content, no additional formatting or explanations.`
}
