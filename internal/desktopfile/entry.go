package desktopfile

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Entry is the subset of a desktop entry used to match windows.
type Entry struct {
	// ID is the desktop file ID: the path below the applications dir with
	// "/" replaced by "-".
	ID             string
	Path           string
	Name           string
	Exec           string
	StartupWMClass string
	NoDisplay      bool
	Hidden         bool
}

// Program returns the basename of the executable named by Exec, skipping a
// leading env invocation and its assignments.
func (e Entry) Program() string {
	fields := splitExec(e.Exec)
	for len(fields) > 0 {
		head := fields[0]
		switch {
		case filepath.Base(head) == "env":
			fields = fields[1:]
		case strings.Contains(head, "=") && !strings.HasPrefix(head, "/"):
			fields = fields[1:]
		default:
			return filepath.Base(head)
		}
	}
	return ""
}

const desktopEntryGroup = "Desktop Entry"

var keyFileOptions = ini.LoadOptions{
	KeyValueDelimiters:      "=",
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	SkipUnrecognizableLines: true,
}

// loadEntry reads the desktop file at path.
func loadEntry(path string) (Entry, error) {
	f, err := ini.LoadSources(keyFileOptions, path)
	if err != nil {
		return Entry{}, err
	}
	return entryFromKeyFile(f)
}

// parseEntry reads the [Desktop Entry] group of a desktop file. Localised
// keys and other groups are ignored.
func parseEntry(r io.Reader) (Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Entry{}, err
	}
	f, err := ini.LoadSources(keyFileOptions, data)
	if err != nil {
		return Entry{}, err
	}
	return entryFromKeyFile(f)
}

func entryFromKeyFile(f *ini.File) (Entry, error) {
	sec, err := f.GetSection(desktopEntryGroup)
	if err != nil {
		return Entry{}, fmt.Errorf("no [%s] group", desktopEntryGroup)
	}
	return Entry{
		Name:           sec.Key("Name").String(),
		Exec:           sec.Key("Exec").String(),
		StartupWMClass: sec.Key("StartupWMClass").String(),
		NoDisplay:      sec.Key("NoDisplay").String() == "true",
		Hidden:         sec.Key("Hidden").String() == "true",
	}, nil
}

// splitExec splits an Exec value into arguments, honouring double quotes and
// backslash escapes inside them.
func splitExec(s string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
		escaped bool
		pending bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				fields = append(fields, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if pending {
		fields = append(fields, current.String())
	}
	return fields
}
