package cli

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/stencil/pkg/types"
)

// isInteractiveTerminal reports whether prompting is possible: both
// stdin and stdout must be terminals.
func isInteractiveTerminal() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	in := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	out := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return in && out
}

// promptMissing asks for every declared variable without a binding, in
// declaration order. Answers land in bindings as strings (or bools for
// confirm prompts); the generator coerces them against the declared type.
func promptMissing(def *types.TemplateDefinition, bindings map[string]interface{}) error {
	for i := range def.Variables {
		spec := &def.Variables[i]
		if _, bound := bindings[spec.Name]; bound {
			continue
		}

		answer, err := promptVariable(spec)
		if err != nil {
			return err
		}
		if answer != nil {
			bindings[spec.Name] = answer
		}
	}
	return nil
}

// promptVariable runs one survey prompt for a variable spec. A nil
// answer means the user skipped an optional variable.
func promptVariable(spec *types.VariableSpec) (interface{}, error) {
	message := spec.Name
	if spec.Required {
		message += " (required)"
	}

	if len(spec.Enum) > 0 {
		options := make([]string, len(spec.Enum))
		for i, e := range spec.Enum {
			options[i] = fmt.Sprintf("%v", e)
		}
		prompt := &survey.Select{Message: message, Options: options, Help: spec.Description}
		if spec.HasDefault() {
			prompt.Default = fmt.Sprintf("%v", spec.Default)
		}
		var answer string
		if err := survey.AskOne(prompt, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	}

	if spec.Type == types.VarBoolean {
		prompt := &survey.Confirm{Message: message, Help: spec.Description}
		if d, ok := spec.Default.(bool); ok {
			prompt.Default = d
		}
		var answer bool
		if err := survey.AskOne(prompt, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	}

	prompt := &survey.Input{Message: message, Help: spec.Description}
	if spec.HasDefault() {
		prompt.Default = fmt.Sprintf("%v", spec.Default)
	}

	var opts []survey.AskOpt
	if v := validatorFor(spec); v != nil {
		opts = append(opts, survey.WithValidator(v))
	}

	var answer string
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return nil, err
	}
	if answer == "" && !spec.Required && !spec.HasDefault() {
		return nil, nil
	}
	return answer, nil
}

// validatorFor builds the survey validator chain for a spec: required,
// pattern, and numeric range checks. Type coercion itself happens later
// in the generator, so the numeric check only guards parseability.
func validatorFor(spec *types.VariableSpec) survey.Validator {
	var validators []survey.Validator

	if spec.Required {
		validators = append(validators, survey.Required)
	}
	if spec.Pattern != "" {
		validators = append(validators, patternValidator(spec.Pattern))
	}
	if spec.Type == types.VarNumber {
		validators = append(validators, numberValidator(spec.Min, spec.Max))
	}

	if len(validators) == 0 {
		return nil
	}
	return survey.ComposeValidators(validators...)
}

func patternValidator(pattern string) survey.Validator {
	re, compileErr := regexp.Compile(pattern)
	return func(ans interface{}) error {
		if compileErr != nil {
			return fmt.Errorf("invalid pattern %q: %v", pattern, compileErr)
		}
		s, _ := ans.(string)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value does not match pattern %s", pattern)
		}
		return nil
	}
}

func numberValidator(min, max *float64) survey.Validator {
	return func(ans interface{}) error {
		s, _ := ans.(string)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		if min != nil && n < *min {
			return fmt.Errorf("must be at least %v", *min)
		}
		if max != nil && n > *max {
			return fmt.Errorf("must be at most %v", *max)
		}
		return nil
	}
}
