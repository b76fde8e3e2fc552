package tui

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
)

// ErrInteractiveDisabled is returned when interactive prompts are disabled via MIRRORKIT_NO_INTERACTIVE
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (MIRRORKIT_NO_INTERACTIVE is set)")

// checkInteractiveAllowed returns an error if interactive mode is disabled
func checkInteractiveAllowed() error {
	if os.Getenv("MIRRORKIT_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	return nil
}

// ConfirmWipe asks the user whether an existing directory may be
// removed and re-cloned. Defaults to no.
func ConfirmWipe(dir string) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	var confirmed bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s exists but is not a usable repository. Remove and re-clone?", dir),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, fmt.Errorf("canceled")
	}

	return confirmed, nil
}
