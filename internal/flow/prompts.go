package flow

import (
	"fmt"
	"strings"

	"github.com/pitchframe/marketing-agent/internal/llm"
	"github.com/pitchframe/marketing-agent/internal/websearch"
)

// Prompt builders for every oracle call the engine issues. Each returns the
// ordered role-tagged segments for one completion.

const routerSystemPrompt = `You are an intelligent router for an AI Agent system.
Your job is to classify the user's intent into one of two categories:
1. 'marketing': The user wants marketing advice, strategies, product promotion, or business growth help. Also select this if the user is answering 'yes' to a question about needing marketing help.
2. 'general': The user is greeting, asking who you are, or making small talk.

Here is the recent conversation context:
%s

Based on the last user message, output ONLY one word: 'marketing' or 'general'.`

func routerPrompt(recentContext string) []llm.Message {
	return []llm.Message{llm.System(fmt.Sprintf(routerSystemPrompt, recentContext))}
}

const smallTalkSystemPrompt = "You are the Orchestrator of the AI Marketing System. You are helpful and polite. If the user greets you, greet them back and ask if they need help with marketing strategies. Keep it brief."

func smallTalkPrompt(userInput string) []llm.Message {
	return []llm.Message{
		llm.System(smallTalkSystemPrompt),
		llm.User(userInput),
	}
}

const extractionSystemPrompt = "You are an expert at extracting product details from a user's message. Summarize the user's description into a structured format. Output ONLY in this format, no more no less:\nName: [name or 'unknown']\nFeatures: [comma-separated list or 'unknown']\nTarget Audience: [description or 'unknown']\nGoals: [description or 'unknown']"

func extractionPrompt(userInput string) []llm.Message {
	return []llm.Message{
		llm.System(extractionSystemPrompt),
		llm.User(userInput),
	}
}

const clarifySystemPrompt = "You are a trendy, energetic marketing genius! 🚀 Your goal is to hype up the user and get the deets on their product. Don't be boring. Ask 3-4 punchy questions to understand their vibe, target audience, and goals. Use emojis and keep it fresh! If the user's previous answer was vague, ask for specific details."

func clarifyPrompt(turns []Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+1)
	msgs = append(msgs, llm.System(clarifySystemPrompt))
	for _, t := range turns {
		switch t.Role {
		case RoleUser:
			msgs = append(msgs, llm.User(t.Content))
		case RoleAssistant:
			msgs = append(msgs, llm.Assistant(t.Content))
		}
	}
	return msgs
}

const strategyQuerySystemPrompt = "You are an expert at crafting effective web search queries. Based on the following product details, generate a single, concise search query to find the best marketing strategies. Output ONLY the search query itself, with no extra text or quotation marks."

func strategyQueryPrompt(productDetails string) []llm.Message {
	return []llm.Message{
		llm.System(strategyQuerySystemPrompt),
		llm.User(productDetails),
	}
}

const citationSystemPrompt = "You are a marketing expert. Based on the web search results provided below, generate 3-5 concise, actionable marketing strategies. For each strategy, you MUST cite the source number (e.g., 'Source: [1]') from which the idea was primarily derived. Output ONLY in this format, with each strategy on a new line:\n1. [1-2 sentence description]. (Source: [number])\n2. [1-2 sentence description]. (Source: [number])"

func citationPrompt(productDetails string, results []websearch.Result) []llm.Message {
	blocks := make([]string, 0, len(results))
	for i, res := range results {
		blocks = append(blocks, fmt.Sprintf("Source [%d]:\nTitle: %s\nSnippet: %s", i+1, res.Title, res.Snippet))
	}
	return []llm.Message{
		llm.System(citationSystemPrompt),
		llm.User(fmt.Sprintf("Product details: %s\n\nWeb Search Results:\n%s", productDetails, strings.Join(blocks, "\n\n"))),
	}
}

const selectionSystemPrompt = `You are a helpful assistant helping a user select a marketing strategy from a list.
The user might reply with a number (e.g., "1"), an ordinal (e.g., "the first one"), or a description (e.g., "the social media one").

Here are the available strategies:
%s

Based on the user's input: "%s"

Return ONLY the integer index (1-based) of the selected strategy.
If the user's input is ambiguous or doesn't match any strategy, return '0'.
Output ONLY the number.`

func selectionPrompt(strategies []string, userInput string) []llm.Message {
	numbered := make([]string, 0, len(strategies))
	for i, s := range strategies {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, s))
	}
	return []llm.Message{
		llm.System(fmt.Sprintf(selectionSystemPrompt, strings.Join(numbered, "\n"), userInput)),
	}
}

const guideQuerySystemPrompt = "You are an expert at crafting effective web search queries. Based on the following product and selected marketing strategy, generate a single, concise search query to find a step-by-step guide for implementation. Output ONLY the search query itself."

func guideQueryPrompt(productDetails, strategy string) []llm.Message {
	return []llm.Message{
		llm.System(guideQuerySystemPrompt),
		llm.User(fmt.Sprintf("Product: %s\n\nStrategy: %s", productDetails, strategy)),
	}
}

const guideSystemPrompt = "You are a marketing expert. Provide a clear, step-by-step approach to implement the selected strategy. ALSO, recommend specific software tools that can help. Format the output clearly using Markdown. Output EXACTLY in this structure:\n\nGreat choice! Here is your step-by-step guide:\n\n### Steps:\n1. [step1]\n2. [step2]\n...\n\n### Recommended Tools 🛠️:\n- **[Tool Name]**: [Brief description]\n- **[Tool Name]**: [Brief description]\n...\n\n### Required Documents:\n- [doc1]\n- [doc2]\n..."

func guidePrompt(productDetails, strategy, guideResults, toolResults string) []llm.Message {
	return []llm.Message{
		llm.System(guideSystemPrompt),
		llm.User(fmt.Sprintf("Product: %s\nStrategy: %s\nGuide Search: %s\nTool Search: %s", productDetails, strategy, guideResults, toolResults)),
	}
}

const satisfactionSystemPrompt = `You are a marketing expert assistant.
The user has selected the strategy: '%s'.
You have provided them with this guide:
%s

Analyze the user's latest input: "%s"

PRIORITY RULES:
1. If the user mentions 'email', 'mail', 'send', 'send it', or asks to receive the guide/details, output EXACTLY: SATISFIED
(Do this even if they ask for specific details like "email me step 1". The system will handle sending the full guide.)

2. If the user confirms they are happy, says 'yes', 'good', 'perfect', output EXACTLY: SATISFIED

3. If the user dislikes it, says 'no', 'not good', 'change', or wants to try a different strategy, output EXACTLY: DISSATISFIED

4. If the user says 'bye', 'goodbye', 'exit', 'quit', 'thanks', or 'thank you' (without asking for email), provide a friendly farewell message (e.g., "Happy marketing! 🚀"). Do NOT output SATISFIED.

5. ONLY if none of the above apply: If the user asks a question, asks for clarification, or makes a general comment, provide a helpful, friendly response to answer them. Keep it concise.`

func satisfactionPrompt(strategy, guide, userInput string) []llm.Message {
	return []llm.Message{
		llm.System(fmt.Sprintf(satisfactionSystemPrompt, strategy, guide, userInput)),
	}
}

func formatSnippets(results []websearch.Result) string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, fmt.Sprintf("Title: %s\nSnippet: %s", res.Title, res.Snippet))
	}
	return strings.Join(lines, "\n")
}
