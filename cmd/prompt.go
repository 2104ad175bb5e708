package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"campaignd/internal/config"
	"campaignd/internal/inputs"

	"golang.org/x/term"
)

// collectInputs prompts for every declared input the base store cannot
// resolve and layers the answers over it. Password inputs are read
// without echo when stdin is a terminal.
func collectInputs(manifest config.Manifest, base inputs.ValueStore) (inputs.ValueStore, error) {
	missing := make([]config.InputDeclaration, 0, len(manifest.Inputs))
	for _, decl := range manifest.Inputs {
		if _, ok := base.Lookup(decl); !ok {
			missing = append(missing, decl)
		}
	}
	if len(missing) == 0 {
		return base, nil
	}

	values := make(map[string]string, len(missing))
	reader := bufio.NewReader(os.Stdin)
	for _, decl := range missing {
		value, err := promptValue(reader, decl)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", decl.ID, err)
		}
		values[decl.ID] = value
	}
	return inputs.ChainStore{inputs.NewStaticStore(values), base}, nil
}

func promptValue(reader *bufio.Reader, decl config.InputDeclaration) (string, error) {
	label := decl.Description
	if label == "" {
		label = decl.ID
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)

	if decl.Password && term.IsTerminal(int(os.Stdin.Fd())) {
		value, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(value), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
