package quizgen

import "strings"

const systemPrompt = `You are a quiz generator. Create exactly 5 multiple-choice questions about the given topic.
Each question must have 4 options (A, B, C, D) with only one correct answer.
Provide a brief explanation for the correct answer.

Return ONLY a valid JSON object with this exact structure:
{
  "questions": [
    {
      "id": "1",
      "question": "Question text here?",
      "options": {
        "A": "Option A text",
        "B": "Option B text",
        "C": "Option C text",
        "D": "Option D text"
      },
      "correctAnswer": "A",
      "explanation": "Brief explanation of why this is correct"
    }
  ]
}`

const topicPrefix = "Create a quiz about: "

// buildUserMessage returns the user prompt for an already trimmed topic.
func buildUserMessage(topic string) string {
	return topicPrefix + topic
}

// TopicFromTranscript recovers the topic from a logged request transcript.
// It returns "" when no quiz prompt is present.
func TopicFromTranscript(transcript string) string {
	for _, line := range strings.Split(transcript, "\n") {
		if topic, ok := strings.CutPrefix(line, topicPrefix); ok {
			return strings.TrimSpace(topic)
		}
	}
	return ""
}
