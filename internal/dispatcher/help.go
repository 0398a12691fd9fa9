package dispatcher

import (
	"fmt"
	"os"

	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/evaluator"
)

const (
	noSuchMagicFormat = "No such magic '%s' for %ss."
	noHelpFormat      = "No help available for magic '%s' for %ss."
	noHelpOnFormat    = "Sorry, no help is available on '%s'."
)

// Help returns the help of a magic.
//
// Level 0 is the trimmed documentation with its option table. Higher levels
// return the source file that defines the handler. Unknown magics and
// magics without help get distinct placeholders.
func (d *Dispatcher) Help(kind handler.Kind, name string, level int) string {
	kind = kind.Normalize()
	e, err := d.registry.lookup(kind, name)
	if err != nil {
		return fmt.Sprintf(noSuchMagicFormat, name, kind)
	}

	noHelp := fmt.Sprintf(noHelpFormat, name, kind)
	if level > 0 {
		if e.handler.Source == "" {
			return noHelp
		}
		data, err := os.ReadFile(e.handler.Source)
		if err != nil {
			return noHelp
		}
		return string(data)
	}

	if e.doc == "" {
		return noHelp
	}
	return e.doc
}

// HelpOn returns the evaluator's help on the object at the cursor of info.
func (d *Dispatcher) HelpOn(info evaluator.Info, level int) string {
	if hp, ok := d.Evaluator().(evaluator.HelpProvider); ok {
		if text, ok := hp.HelpOn(info, level); ok {
			return text
		}
	}
	return fmt.Sprintf(noHelpOnFormat, info.Code)
}
