// Package voice maps free-form speech transcripts onto the fixed set of UI
// actions, and defines the speech-capture boundary.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"roseglass/internal/backend"
	"roseglass/internal/catalog"
	"roseglass/internal/logger"
)

// Action is the UI action a transcript resolves to. The set is closed on
// the shell side, but Command.Action may carry an unrecognized value when
// the backend strays outside the schema; the shell treats those like
// ActionUnknown with a notice.
type Action string

const (
	ActionOpenApp        Action = "open_app"
	ActionCloseApp       Action = "close_app"
	ActionGoToDesktop    Action = "go_to_desktop"
	ActionOpenParameters Action = "open_parameters"
	ActionUnknown        Action = "unknown_command"
)

// Command is a classification result, consumed immediately by the shell.
type Command struct {
	Action Action `json:"action"`
	AppID  string `json:"appId,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Interpreter classifies transcripts against the app catalog.
type Interpreter struct {
	client backend.ModelClient
	apps   *catalog.Catalog
	log    *logger.LogEntry
}

// NewInterpreter returns an interpreter over client and apps. A nil client
// means the backend is unconfigured.
func NewInterpreter(client backend.ModelClient, apps *catalog.Catalog) *Interpreter {
	return &Interpreter{
		client: client,
		apps:   apps,
		log:    logger.Named("voice"),
	}
}

// Classify resolves transcript to a Command.
//
// An empty transcript returns ActionUnknown with no backend call. An
// unconfigured backend is a reportable error. Any backend or parse failure
// degrades to ActionUnknown with a description instead of propagating, so a
// malformed classification can never crash the caller.
func (i *Interpreter) Classify(ctx context.Context, transcript string) (Command, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Command{Action: ActionUnknown}, nil
	}
	if i.client == nil {
		return Command{}, backend.ErrNotConfigured
	}

	raw, err := i.client.Classify(ctx, i.buildPrompt(transcript), commandSchema())
	if err != nil {
		if err == backend.ErrNotConfigured {
			return Command{}, err
		}
		i.log.WithField("error", err.Error()).Warn("voice classification failed")
		return Command{Action: ActionUnknown, Err: "failed to interpret command"}, nil
	}

	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		i.log.WithField("error", err.Error()).Warn("voice classification returned malformed JSON")
		return Command{Action: ActionUnknown, Err: "failed to interpret command"}, nil
	}
	if cmd.Action == "" {
		cmd.Action = ActionUnknown
	}
	return cmd, nil
}

func (i *Interpreter) buildPrompt(transcript string) string {
	var apps strings.Builder
	for _, app := range i.apps.Apps() {
		fmt.Fprintf(&apps, "- %s (id: '%s')\n", app.Name, app.ID)
	}

	return fmt.Sprintf(`You are a voice command interpreter for a simulated desktop environment called Roseglass. Parse the user's spoken command and translate it into a structured JSON command the system can execute.

Here are the available applications and their IDs:
%s
Based on the user's command, determine the user's intent.

Possible actions are:
- "open_app": When the user wants to open a specific application.
- "close_app": When the user wants to close the currently open application.
- "go_to_desktop": When the user wants to return to the main desktop view.
- "open_parameters": When the user wants to open the settings/parameters panel.
- "unknown_command": If the command cannot be mapped to any of the above actions.

User command: "%s"

Now, generate the JSON object representing this command.`, apps.String(), transcript)
}

func commandSchema() backend.Schema {
	return backend.Schema{
		Properties: map[string]backend.Property{
			"action": {
				Type:        "string",
				Description: "The action to be performed.",
				Enum: []string{
					string(ActionOpenApp),
					string(ActionCloseApp),
					string(ActionGoToDesktop),
					string(ActionOpenParameters),
					string(ActionUnknown),
				},
			},
			"appId": {
				Type:        "string",
				Description: "The ID of the app, if action is 'open_app'.",
			},
		},
		Required: []string{"action"},
	}
}
