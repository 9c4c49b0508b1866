package session

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// catalogFile is the on-disk form of a command catalog:
//
//	[[command]]
//	name = "Do-Thing"
//	type = "Function"
//	module = "MyModule"
//
//	[[command.parameter]]
//	name = "Path"
//	position = 0
type catalogFile struct {
	Commands []CommandInfo `toml:"command"`
}

// LoadCatalog reads a commands.toml file.
func LoadCatalog(path string) ([]CommandInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read command catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a command catalog and checks every entry has a name
// and a known type.
func ParseCatalog(data []byte) ([]CommandInfo, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse command catalog")
	}
	for i, c := range f.Commands {
		if c.Name == "" {
			return nil, errors.Newf("command catalog entry %d has no name", i)
		}
		switch c.CommandType {
		case "":
			f.Commands[i].CommandType = CommandTypeFunction
		case CommandTypeAlias:
			if c.ResolvedCommand == "" {
				return nil, errors.Newf("alias %q has no resolved-command", c.Name)
			}
		case CommandTypeCmdlet, CommandTypeFunction, CommandTypeFilter, CommandTypeWorkflow,
			CommandTypeApplication, CommandTypeExternalScript:
		default:
			return nil, errors.Newf("command %q has unknown type %q", c.Name, c.CommandType)
		}
	}
	return f.Commands, nil
}
