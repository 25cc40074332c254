package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"Lumi_V0.1/internal/utility"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput is returned when a prompt's input fails its declared schema.
var ErrInvalidInput = errors.New("prompt input does not match schema")

var validate = validator.New()

// PromptDef declares a schema-validated prompt.
type PromptDef[In any] struct {
	// Name identifies the prompt in logs and errors.
	Name string
	// System is sent as the system instruction.
	System string
	// Template is rendered with the input value as dot.
	Template string
	// Image picks the data URI field to inline with the request; nil for text-only prompts.
	Image func(In) string
	// Output is the schema the model must fill.
	Output *Schema
}

// Prompt is one compiled schema-validated model call: In is checked with
// `validate` struct tags, Out is checked against the Output schema.
type Prompt[In any, Out any] struct {
	def   PromptDef[In]
	tmpl  *template.Template
	model Model
}

// DefinePrompt compiles def against model.
func DefinePrompt[In any, Out any](model Model, def PromptDef[In]) (*Prompt[In, Out], error) {
	tmpl, err := template.New(def.Name).Option("missingkey=error").Parse(def.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", def.Name, err)
	}
	return &Prompt[In, Out]{def: def, tmpl: tmpl, model: model}, nil
}

// MustDefinePrompt is DefinePrompt for package-level prompts with static templates.
func MustDefinePrompt[In any, Out any](model Model, def PromptDef[In]) *Prompt[In, Out] {
	p, err := DefinePrompt[In, Out](model, def)
	if err != nil {
		panic(err)
	}
	return p
}

// Run performs the call. It never returns a zero Out with a nil error:
// any missing or malformed model output is an ErrSchemaMismatch.
func (p *Prompt[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var out Out

	// 1. Input schema
	if err := validate.Struct(in); err != nil {
		return out, fmt.Errorf("%s: %w: %v", p.def.Name, ErrInvalidInput, err)
	}

	// 2. Render the user prompt
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, in); err != nil {
		return out, fmt.Errorf("%s: render prompt: %w", p.def.Name, err)
	}

	req := GenerateRequest{
		System: p.def.System,
		Prompt: buf.String(),
		Schema: p.def.Output,
	}

	// 3. Inline image, if the prompt references one
	if p.def.Image != nil {
		uri, err := utility.ParseDataURI(p.def.Image(in))
		if err != nil {
			return out, fmt.Errorf("%s: %w: %v", p.def.Name, ErrInvalidInput, err)
		}
		req.Image = &InlineImage{MimeType: uri.MimeType, Data: uri.Data}
	}

	// 4. Call the model
	raw, err := p.model.Generate(ctx, req)
	if err != nil {
		return out, fmt.Errorf("%s: %w", p.def.Name, err)
	}

	// 5. Output schema
	if err := p.def.Output.Validate([]byte(raw)); err != nil {
		log.Ctx(ctx).Debug().Str("prompt", p.def.Name).Str("raw", truncate(raw, 512)).Msg("Rejected model output")
		return out, fmt.Errorf("%s: %w", p.def.Name, err)
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%s: %w: %v", p.def.Name, ErrSchemaMismatch, err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
