package patch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Proposal files let a reviewer inspect or hand-edit a patch before it is
// applied. The YAML form carries the full changes mapping, so a loaded
// proposal is re-scored against the current workspace rather than
// trusting the serialized score.

// SaveProposal writes a proposal to a YAML file.
func SaveProposal(p *Proposal, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding proposal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadChanges reads the changes mapping from a proposal or plain changes
// YAML file. Both full proposals and bare "path: content" documents are
// accepted.
func LoadChanges(path string) (description string, changes map[string]string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading proposal file: %w", err)
	}

	var p Proposal
	if err := yaml.Unmarshal(data, &p); err == nil && len(p.Changes) > 0 {
		return p.Description, p.Changes, nil
	}

	var bare map[string]string
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return "", nil, fmt.Errorf("parsing proposal file: %w", err)
	}
	return "", bare, nil
}
