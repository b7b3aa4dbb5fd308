package insights

import (
	"fmt"
	"strings"
)

const abstractSummaryPrompt = `You are an expert in language comprehension and summarization.
Read the following meeting transcript and summarize it into two or three abstract paragraphs.
Each paragraph should be between 2 and 4 sentences long.
Also, come up with a short, descriptive title for the meeting.
Retain the most important points to help a person understand the meeting's essence without reading the full text.
Avoid unnecessary details, tangential points, and do not use bullet points or lists.

<response-template>
## {{ TITLE }}
{{ ABSTRACT PARAGRAPHS }}
</response-template>

<transcript>
%s
</transcript>`

const keyPointsPrompt = `You are an expert analyst. Your task is to identify the main points from the meeting transcript.
First, identify the most important ideas, findings, and topics.
Second, sort these points so the most discussed topic is first.
Format your response using the template below.

<response-template>
{{ FOR EACH POINT IN KEY_POINT LIST }}
### {{ POINT.NAME }}
- {{ POINT.DETAIL }}
- {{ POINT.DETAIL }}
- {{ POINT.DETAIL }}
</response-template>

<transcript>
%s
</transcript>`

const actionItemsPrompt = `You are an expert in task identification.
Review the meeting transcript and identify all tasks, assignments, or actions that were agreed upon or mentioned as needing to be done.
List these action items clearly.

<response-template>
{{ FOR EACH ITEM IN ACTION_ITEM LIST }}
### {{ ITEM.NUMBER }}. {{ ITEM.NAME }}
- {{ ITEM.DETAIL }}
- {{ ITEM.DETAIL }}
</response-template>

<transcript>
%s
</transcript>`

const sentimentPrompt = `You are an expert in language and emotion analysis.
Review the meeting transcript and provide an analysis of the overall sentiment.
Consider the tone, the emotion conveyed, and the context.
Indicate if the sentiment is generally positive, negative, or neutral, and provide brief explanations for your analysis.
Your answer should be concise and no more than three paragraphs.

<transcript>
%s
</transcript>`

const topicTagsPrompt = `You are an expert in topic modeling.
Review the meeting transcript and identify between three and seven short topic tags that capture what the meeting was about.
Respond with the tags only, as a single comma-separated line, with no numbering and no extra commentary.

<transcript>
%s
</transcript>`

const knowledgeGraphPrompt = `You are an expert in information extraction.
Review the meeting transcript and extract a knowledge graph as a single JSON object with exactly these fields:
- "nodes": array of {"id", "label"} for the concepts discussed
- "edges": array of {"from", "to", "label"} linking node ids
- "participants": array of {"id", "name", "role", "organization"} for the people speaking or mentioned
- "decisions": array of {"id", "title", "description", "owner", "due_date"} for decisions reached
- "timeline": array of {"id", "label", "summary", "start_time"} for notable moments
- "topics": array of short topic strings

Use empty arrays for anything the transcript does not support.
Respond with the JSON object only, no commentary and no code fences.

<transcript>
%s
</transcript>`

const chatPrompt = `You are a helpful meeting assistant. Answer the user's question using only the meeting context below.
If the context does not contain the answer, say so plainly instead of inventing details.

<meeting-context>
Title: %s
Date: %s
Tags: %s
Topics: %s
Participants:
%s
Summary:
%s
Key points:
%s
Action items:
%s
Decisions:
%s
Timeline:
%s
Concepts:
%s
</meeting-context>

<conversation-history>
%s
</conversation-history>

Question: %s`

// SummaryPrompt builds the abstract summary prompt
func SummaryPrompt(transcript string) string {
	return fmt.Sprintf(abstractSummaryPrompt, transcript)
}

// KeyPointsPrompt builds the key points prompt
func KeyPointsPrompt(transcript string) string {
	return fmt.Sprintf(keyPointsPrompt, transcript)
}

// ActionItemsPrompt builds the action items prompt
func ActionItemsPrompt(transcript string) string {
	return fmt.Sprintf(actionItemsPrompt, transcript)
}

// SentimentPrompt builds the sentiment analysis prompt
func SentimentPrompt(transcript string) string {
	return fmt.Sprintf(sentimentPrompt, transcript)
}

// TagsPrompt builds the topic tags prompt
func TagsPrompt(transcript string) string {
	return fmt.Sprintf(topicTagsPrompt, transcript)
}

// KnowledgeGraphPrompt builds the knowledge graph extraction prompt
func KnowledgeGraphPrompt(transcript string) string {
	return fmt.Sprintf(knowledgeGraphPrompt, transcript)
}

// ChatPromptInput carries everything the chat-answer prompt interpolates
type ChatPromptInput struct {
	Title        string
	CreatedAt    string
	Tags         string
	Topics       string
	Participants string
	Summary      string
	KeyPoints    string
	ActionItems  string
	Decisions    string
	Timeline     string
	Concepts     string
	History      string
	Question     string
}

// ChatAnswerPrompt builds the grounded chat prompt
func ChatAnswerPrompt(in ChatPromptInput) string {
	return fmt.Sprintf(chatPrompt,
		orDefault(in.Title, "Untitled Meeting"),
		orDefault(in.CreatedAt, "Unknown date"),
		orDefault(in.Tags, "None"),
		orDefault(in.Topics, "None"),
		orDefault(in.Participants, "No participants captured."),
		orDefault(in.Summary, "No summary available."),
		orDefault(in.KeyPoints, "No key points documented."),
		orDefault(in.ActionItems, "No action items recorded."),
		orDefault(in.Decisions, "No decisions recorded."),
		orDefault(in.Timeline, "No timeline captured."),
		orDefault(in.Concepts, "No concepts captured."),
		orDefault(in.History, "No prior conversation."),
		in.Question,
	)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
