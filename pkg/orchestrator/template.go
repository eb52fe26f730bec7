package orchestrator

import (
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
)

const titleTemplate = `{{App}} [{{Env}}] {{Action}}{{#Version}}: {{Version}}{{/Version}}`

const versionBodyTemplate = `Automated PR via the release console.

**App:** {{App}}

**Env:** {{Env}}

**Target slot:** {{Slot}}

**New version:** {{Version}}
`

const flipBodyTemplate = `Automated PR to flip activeslot and adjust weights.

**App:** {{App}}

**Env:** {{Env}}

**New active slot:** {{NewActive}}
{{#SwitchedOff}}
Standby switch turned OFF.
{{/SwitchedOff}}`

const switchBodyTemplate = `Automated PR to turn the {{Slot}} switch {{State}}.

**App:** {{App}}

**Env:** {{Env}}
`

func renderPullRequest(d description) (title string, body string, err error) {
	titleData := map[string]any{
		"App":     d.bodyData["App"],
		"Env":     d.bodyData["Env"],
		"Action":  d.titleAction,
		"Version": d.titleVersion,
	}

	title, err = mustache.Render(titleTemplate, titleData)
	if err != nil {
		return "", "", fmt.Errorf("failed to render pull request title: %w", err)
	}

	body, err = mustache.Render(d.bodyTemplate, d.bodyData)
	if err != nil {
		return "", "", fmt.Errorf("failed to render pull request body: %w", err)
	}

	return strings.TrimSpace(title), body, nil
}
