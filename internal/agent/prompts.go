package agent

import (
	"os"
	"path/filepath"
	"strings"
)

// Built-in prompt templates. Placeholders use {{name}} syntax and are filled
// by PromptManager.Render.
var defaultPrompts = map[string]string{
	"planner": `You are a task planning expert. Create a comprehensive, structured plan to accomplish the following task:

TASK: {{task}}

Your plan should:
1. Break down the task into logical stages
2. Include specific, actionable steps for each stage
3. Specify required dependencies, tools, or resources for each step
4. Consider potential challenges and alternative approaches

FORMAT GUIDELINES:
- Use clear, numbered steps (e.g., "1. Research X", "2. Implement Y")
- Keep each step focused on a single, well-defined action
- For code-related tasks, specify programming language and key components
- For document tasks, outline document structure and key sections

Avoid vague steps like "research" without specifying what to research.
Ensure each step has a clear, measurable outcome.`,

	"tool_selection": `You are executing a specific step in a plan. Choose the most appropriate tool and parameters.

ORIGINAL TASK: {{task}}

COMPLETE PLAN:
{{plan}}

CURRENT STEP TO EXECUTE: Step {{step_number}}: {{step}}

{{memory}}

Available tools: {{tools}}

Tool descriptions:
{{tool_descriptions}}

Determine which tool should be used to execute this step.
Respond with just the name of the tool and the parameters needed.
Format: TOOL_NAME: param1=value1, param2=value2

Choose parameters that will produce a high-quality result.`,

	"fallback": `You are executing a specific step in a plan, but the tool execution failed.

ORIGINAL TASK: {{task}}
CURRENT STEP TO EXECUTE: Step {{step_number}}: {{step}}

{{memory}}

ERROR: {{error}}

Please generate a meaningful response for this step without using tools.
Be specific, detailed, and provide actual content that helps accomplish the step.`,

	"content": `Generate appropriate {{content_type}} content for this task:

TASK: {{task}}
CURRENT STEP: {{step}}

The content should be comprehensive, well-structured, and directly address the current step.`,

	"step_summary": `Provide a brief summary (2-3 sentences) of the following information:

{{result}}

Focus on extracting the key facts or insights.`,

	"run_summary": `Summarize the results of executing this plan:

ORIGINAL TASK: {{task}}

PLAN:
{{plan}}

{{memory}}

EXECUTION DETAILS:
- Total steps executed: {{total_steps}}
- Tool calls made: {{tool_calls}}
- Web sources fetched: {{web_sources}}
- Files generated: {{generated_files}}

Provide a comprehensive summary that includes:
1. Key information gathered or produced
2. Specific, factual content that was discovered
3. Concrete conclusions or answers
4. What artifacts were created and what they contain

Focus on conveying actual content and knowledge, not just describing the process.`,

	"report_check": `Based on this task, should a final report be generated to summarize the results?

TASK: {{task}}

Answer with just YES or NO.`,

	"report_content": `Create comprehensive, well-formatted content for a final report on this task:

TASK: {{task}}

EXECUTION SUMMARY:
{{summary}}

{{memory}}

The content should be professional, well-structured, and ready for publishing.
Include all key information, findings, analyses, and conclusions.
Format with clear headings, bullet points where appropriate, and a logical flow.`,
}

// PromptManager serves prompt templates. Operators can override any built-in
// template by dropping a <name>.md file into the prompt directory.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Get returns the template for name, preferring a file override.
func (pm *PromptManager) Get(name string) string {
	if pm.Directory != "" {
		path := filepath.Join(pm.Directory, name+".md")
		if data, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(data))) > 0 {
			return string(data)
		}
	}
	return defaultPrompts[name]
}

// Render fills {{key}} placeholders in the named template.
func (pm *PromptManager) Render(name string, vars map[string]string) string {
	out := pm.Get(name)
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
