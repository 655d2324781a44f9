package narrate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"stepviz/internal/compose"
	"stepviz/internal/spec"
)

// Narrator drafts scene narrative text for authored specifications
// whose scenes lack it. It is an authoring aid only and never sits on
// the render path.
type Narrator struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
	composer      *compose.Composer
}

// New creates a Gemini-backed narrator.
func New(ctx context.Context, apiKey, modelName string) (*Narrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Narrator{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
		composer:      compose.New(nil),
	}, nil
}

// NarrateScene drafts one scene's narrative from its materialized
// state.
func (n *Narrator) NarrateScene(ctx context.Context, s *spec.Specification, scene spec.Scene) (string, error) {
	materialized := n.composer.Compose(s, scene.Overlays)
	prompt := n.promptBuilder.BuildScenePrompt(s.Title, scene, materialized)
	return n.generate(ctx, prompt)
}

func (n *Narrator) generate(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)
	resp, err := n.client.Models.GenerateContent(ctx, n.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty narration response")
	}
	return text, nil
}

// PromptBuilder constructs the narration prompts.
type PromptBuilder struct{}

func (pb *PromptBuilder) BuildScenePrompt(title string, scene spec.Scene, materialized *spec.Specification) string {
	var sb strings.Builder
	sb.WriteString("Role: Teacher writing narration for an animated systems diagram.\n")
	fmt.Fprintf(&sb, "Presentation: %s. Scene: %s.\n", title, sceneName(scene))
	sb.WriteString("\nVisible elements in this scene:\n")
	for _, node := range materialized.Nodes {
		marker := ""
		if node.Highlighted {
			marker = " (highlighted)"
		} else if node.Added {
			marker = " (just added)"
		}
		fmt.Fprintf(&sb, "- node %s: %s [%s]%s\n", node.ID, node.Label, node.Kind, marker)
	}
	for _, edge := range materialized.Edges {
		fmt.Fprintf(&sb, "- edge %s: %s -> %s [%s] %s\n", edge.ID, edge.From, edge.To, edge.Kind, edge.Label)
	}
	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Write 1-2 plain sentences narrating what this scene shows a learner.\n")
	sb.WriteString("Present tense, no markdown, no headings, no element ids.\n")
	return sb.String()
}

func sceneName(scene spec.Scene) string {
	if scene.Name != "" {
		return scene.Name
	}
	return scene.ID
}
