// Package prompts embeds the role prompt templates. Templates use FString
// placeholders and are formatted through eino prompt templates by the agents.
package prompts

import (
	"embed"
	"fmt"
)

//go:embed prompts
var promptFiles embed.FS

// Load returns the template text for a role path like "researchers/bull".
func Load(path string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", path))
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", path, err)
	}
	return string(content), nil
}

// MustLoad is Load for templates known at compile time.
func MustLoad(path string) string {
	content, err := Load(path)
	if err != nil {
		panic(err)
	}
	return content
}
